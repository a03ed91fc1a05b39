package rowmap

import (
	"reflect"
)

// Model 结构体映射到结果集之后的元数据
type Model struct {
	Type reflect.Type
	// Fields 按结构体声明顺序排列
	Fields    []*Field
	FieldMap  map[string]*Field // Go 字段名为 key
	ColumnMap map[string]*Field // 列名为 key
}

// Field 字段相关的属性
type Field struct {
	ColName string
	GoName  string
	Type    reflect.Type
	Index   int
	// Optional 结果集里可以没有这一列
	Optional bool
	// Nullable 这一列可以是 NULL：指针、sql.Scanner、[]byte、interface
	Nullable bool
}

// 我们支持的全部标签上的 key 都放在这里
const (
	tagName        = "db"
	tagKeyOptional = "optional"
	tagSkip        = "-"
)
