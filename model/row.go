package model

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"

	"github.com/coderi421/ormsample/internal/errs"
)

// Row is one row of an ad-hoc projection, keyed by column name.
// The drivers hand back different Go types for the same SQL type
// (MySQL returns []byte for most columns, SQLite int64/float64/string),
// the accessors normalize them.
type Row map[string]any

// Value returns the raw value of col. A missing column is an error, not nil.
func (r Row) Value(col string) (any, error) {
	v, ok := r[col]
	if !ok {
		return nil, errs.NewErrUnknownColumn(col)
	}
	return deref(v)
}

func (r Row) String(col string) (string, error) {
	v, err := r.Value(col)
	if err != nil {
		return "", err
	}
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case []byte:
		return string(val), nil
	case time.Time:
		return val.Format(time.DateTime), nil
	default:
		return fmt.Sprint(val), nil
	}
}

func (r Row) Float(col string) (float64, error) {
	v, err := r.Value(col)
	if err != nil {
		return 0, err
	}
	switch val := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case []byte:
		return parseFloat(col, string(val))
	case string:
		return parseFloat(col, val)
	default:
		return 0, fmt.Errorf("model: column %s: cannot use %T as float", col, v)
	}
}

func (r Row) Int(col string) (int64, error) {
	v, err := r.Value(col)
	if err != nil {
		return 0, err
	}
	switch val := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return val, nil
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case float64:
		return int64(val), nil
	case []byte:
		return parseInt(col, string(val))
	case string:
		return parseInt(col, val)
	default:
		return 0, fmt.Errorf("model: column %s: cannot use %T as integer", col, v)
	}
}

// deref 展开 *any 和 driver.Valuer，gorm Scan 到 map 的时候可能给出这两种
func deref(v any) (any, error) {
	switch val := v.(type) {
	case *any:
		if val == nil {
			return nil, nil
		}
		return deref(*val)
	case driver.Valuer:
		dv, err := val.Value()
		if err != nil {
			return nil, err
		}
		return dv, nil
	default:
		return v, nil
	}
}

func parseFloat(col, s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("model: column %s: %w", col, err)
	}
	return f, nil
}

func parseInt(col, s string) (int64, error) {
	i, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return i, nil
	}
	// MySQL 的 DECIMAL 以字符串返回，SUM 之后的整数列也可能带小数点
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil {
		return 0, fmt.Errorf("model: column %s: %w", col, err)
	}
	return int64(f), nil
}
