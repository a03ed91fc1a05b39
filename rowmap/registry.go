package rowmap

import (
	"database/sql"
	"reflect"
	"strings"
	"time"

	"github.com/coderi421/ormsample/internal/errs"
	lru "github.com/hashicorp/golang-lru"
)

const defaultCacheSize = 128

type Registry interface {
	Get(val any) (*Model, error)
}

type RegistryOption func(r *registry)

// WithCacheSize 最多缓存多少个结构体的元数据，n <= 0 时忽略
func WithCacheSize(n int) RegistryOption {
	return func(r *registry) {
		if n > 0 {
			r.size = n
		}
	}
}

// registry 用 LRU 缓存解析结果
// reflect.Type 作为 key 可以避免同名结构体冲突，lru.Cache 自己是并发安全的
type registry struct {
	size   int
	models *lru.Cache
}

func NewRegistry(opts ...RegistryOption) Registry {
	r := &registry{size: defaultCacheSize}
	for _, opt := range opts {
		opt(r)
	}
	// size 一定大于 0，不会出错
	r.models, _ = lru.New(r.size)
	return r
}

// Get returns the metadata of the struct val points to, parsing it on first use.
func (r *registry) Get(val any) (*Model, error) {
	typ := reflect.TypeOf(val)
	if m, ok := r.models.Get(typ); ok {
		return m.(*Model), nil
	}
	m, err := r.parseModel(typ)
	if err != nil {
		return nil, err
	}
	r.models.Add(typ, m)
	return m, nil
}

// parseModel 只接受指向结构体的一级指针
// db:"ColumnName,optional"
func (r *registry) parseModel(typ reflect.Type) (*Model, error) {
	if typ == nil || typ.Kind() != reflect.Pointer || typ.Elem().Kind() != reflect.Struct {
		return nil, errs.ErrPointerOnly
	}
	typ = typ.Elem()

	numField := typ.NumField()
	m := &Model{
		Type:      typ,
		Fields:    make([]*Field, 0, numField),
		FieldMap:  make(map[string]*Field, numField),
		ColumnMap: make(map[string]*Field, numField),
	}
	for i := 0; i < numField; i++ {
		fd := typ.Field(i)
		if !fd.IsExported() || isRelation(fd.Type) {
			continue
		}
		tag := fd.Tag.Get(tagName)
		if tag == tagSkip {
			continue
		}
		colName, optional, err := parseTag(tag)
		if err != nil {
			return nil, err
		}
		// 没有标签的时候直接用字段名，和示例库的列名一致
		if colName == "" {
			colName = fd.Name
		}
		f := &Field{
			ColName:  colName,
			GoName:   fd.Name,
			Type:     fd.Type,
			Index:    i,
			Optional: optional,
			Nullable: isNullable(fd.Type),
		}
		m.Fields = append(m.Fields, f)
		m.FieldMap[fd.Name] = f
		m.ColumnMap[colName] = f
	}
	return m, nil
}

func parseTag(tag string) (string, bool, error) {
	if tag == "" {
		return "", false, nil
	}
	segs := strings.Split(tag, ",")
	optional := false
	for _, opt := range segs[1:] {
		if strings.TrimSpace(opt) != tagKeyOptional {
			return "", false, errs.NewErrInvalidTagContent(tag)
		}
		optional = true
	}
	return strings.TrimSpace(segs[0]), optional, nil
}

var (
	scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
	timeType    = reflect.TypeOf(time.Time{})
)

// isRelation 关联对象不是列，例如 Product.ProductSubcategory、ProductSubcategory.Products
func isRelation(typ reflect.Type) bool {
	if isValueType(typ) {
		return false
	}
	switch typ.Kind() {
	case reflect.Map, reflect.Struct:
		return true
	case reflect.Slice:
		return typ.Elem().Kind() != reflect.Uint8
	case reflect.Pointer:
		elem := typ.Elem()
		return !isValueType(elem) && elem.Kind() == reflect.Struct
	default:
		return false
	}
}

// isValueType 能直接从一列里扫描出来的结构体
func isValueType(typ reflect.Type) bool {
	if typ == timeType {
		return true
	}
	return typ.Implements(scannerType) || reflect.PointerTo(typ).Implements(scannerType)
}

func isNullable(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Pointer, reflect.Interface:
		return true
	case reflect.Slice:
		return typ.Elem().Kind() == reflect.Uint8
	default:
		return reflect.PointerTo(typ).Implements(scannerType)
	}
}
