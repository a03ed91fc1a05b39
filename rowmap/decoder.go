// Package rowmap decodes the current row of a *sql.Rows into declared record
// shapes. Unlike a plain Scan it checks the result set against the record:
// an unknown column, a missing required column and a NULL written into a
// non-nullable field are all errors.
//
// DecodePair splits one row into two records at a named column, the way a
// join of a parent table with a child table is read back.
package rowmap

import (
	"database/sql"
	"reflect"
	"strings"

	"github.com/coderi421/ormsample/internal/errs"
)

var (
	ErrUnknownColumn       = errs.ErrUnknownColumn
	ErrMissingColumn       = errs.ErrMissingColumn
	ErrNullColumn          = errs.ErrNullColumn
	ErrSplitColumnNotFound = errs.ErrSplitColumnNotFound
	ErrPointerOnly         = errs.ErrPointerOnly
)

type Decoder struct {
	r Registry
}

type DecoderOption func(d *Decoder)

func WithRegistry(r Registry) DecoderOption {
	return func(d *Decoder) {
		d.r = r
	}
}

func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	if d.r == nil {
		d.r = NewRegistry()
	}
	return d
}

// Decode decodes the current row into dst, a pointer to a struct.
// Every column must belong to dst.
func (d *Decoder) Decode(rows *sql.Rows, dst any) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	part, err := d.part(dst, cols)
	if err != nil {
		return err
	}
	holders := part.holders()
	if err = rows.Scan(holders...); err != nil {
		return err
	}
	return part.assign(holders)
}

// DecodePair decodes the current row into two records. The columns before
// the first column named splitOn (compared case-insensitively, skipping the
// first column) go to parent, the rest go to child.
// A NULL in the split column means the row has no child: child is left
// untouched and present is false.
func (d *Decoder) DecodePair(rows *sql.Rows, parent, child any, splitOn string) (present bool, err error) {
	cols, err := rows.Columns()
	if err != nil {
		return false, err
	}
	split := splitIndex(cols, splitOn)
	if split < 0 {
		return false, errs.NewErrSplitColumnNotFound(splitOn)
	}

	left, err := d.part(parent, cols[:split])
	if err != nil {
		return false, err
	}
	right, err := d.part(child, cols[split:])
	if err != nil {
		return false, err
	}

	holders := append(left.holders(), right.holders()...)
	if err = rows.Scan(holders...); err != nil {
		return false, err
	}

	if err = left.assign(holders[:split]); err != nil {
		return false, err
	}
	rightHolders := holders[split:]
	// 拆分列是 NULL，说明外连接没有匹配到子记录
	if reflect.ValueOf(rightHolders[0]).Elem().IsNil() {
		return false, nil
	}
	if err = right.assign(rightHolders); err != nil {
		return false, err
	}
	return true, nil
}

func splitIndex(cols []string, splitOn string) int {
	for i := 1; i < len(cols); i++ {
		if strings.EqualFold(cols[i], splitOn) {
			return i
		}
	}
	return -1
}

// part 是一个结构体在一行里占据的那几列
type part struct {
	meta   *Model
	val    reflect.Value
	fields []*Field
}

func (d *Decoder) part(dst any, cols []string) (*part, error) {
	meta, err := d.r.Get(dst)
	if err != nil {
		return nil, err
	}
	p := &part{
		meta:   meta,
		val:    reflect.ValueOf(dst).Elem(),
		fields: make([]*Field, len(cols)),
	}
	seen := make(map[string]struct{}, len(cols))
	for i, col := range cols {
		fd, ok := meta.ColumnMap[col]
		if !ok {
			fd, ok = findFold(meta, col)
		}
		if !ok {
			return nil, errs.NewErrUnknownColumn(col)
		}
		p.fields[i] = fd
		seen[fd.ColName] = struct{}{}
	}
	for _, fd := range meta.Fields {
		if _, ok := seen[fd.ColName]; !ok && !fd.Optional {
			return nil, errs.NewErrMissingColumn(meta.Type.Name(), fd.ColName)
		}
	}
	return p, nil
}

// findFold 驱动返回的列名大小写不一定和查询里写的一致
func findFold(meta *Model, col string) (*Field, bool) {
	for _, fd := range meta.Fields {
		if strings.EqualFold(fd.ColName, col) {
			return fd, true
		}
	}
	return nil, false
}

// holders 为每一列准备一个 **T，这样 NULL 可以和零值区分开
func (p *part) holders() []any {
	res := make([]any, len(p.fields))
	for i, fd := range p.fields {
		res[i] = reflect.New(reflect.PointerTo(fd.Type)).Interface()
	}
	return res
}

func (p *part) assign(holders []any) error {
	for i, fd := range p.fields {
		ptr := reflect.ValueOf(holders[i]).Elem()
		target := p.val.Field(fd.Index)
		if ptr.IsNil() {
			if !fd.Nullable {
				return errs.NewErrNullColumn(p.meta.Type.Name(), fd.ColName)
			}
			target.Set(reflect.Zero(fd.Type))
			continue
		}
		target.Set(ptr.Elem())
	}
	return nil
}
