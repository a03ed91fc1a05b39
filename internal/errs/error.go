package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrPointerOnly 只支持一级指针作为输入
	// 看到这个 error 说明你输入了其它的东西
	// 我们并不希望用户能够直接使用 err == ErrPointerOnly
	// 所以放在我们的 internal 包里
	ErrPointerOnly = errors.New("rowmap: 只支持指向结构体的一级指针")

	// ErrUnknownColumn 结果集里出现了目标结构体没有声明的列
	ErrUnknownColumn = errors.New("rowmap: 未知列")
	// ErrMissingColumn 目标结构体声明了必填列，但是结果集里没有
	ErrMissingColumn = errors.New("rowmap: 缺少列")
	// ErrNullColumn NULL 值不能写入非空字段
	ErrNullColumn          = errors.New("rowmap: NULL 写入非空字段")
	ErrSplitColumnNotFound = errors.New("rowmap: 找不到拆分列")
	ErrInvalidTagContent   = errors.New("rowmap: 非法标签")

	// ErrNullParentKey 父记录没有主键，分组无法进行
	ErrNullParentKey = errors.New("assemble: parent row has a NULL key")

	ErrUnknownProcedure  = errors.New("sampledb: unknown stored procedure")
	ErrUnsupportedDriver = errors.New("sampledb: unsupported driver")

	// ErrSessionNotFound 状态存储里没有这个 run 的数据
	ErrSessionNotFound = errors.New("state: session not found")
	ErrSessionExists   = errors.New("state: session already exists")
	ErrKeyNotFound     = errors.New("state: key not found")

	// ErrNoLocation Update/Delete 之前没有成功执行 Insert
	ErrNoLocation = errors.New("samples: no location was inserted in this run")
	ErrStepPanic  = errors.New("ormsample: step panicked")

	ErrInvalidConfig = errors.New("config: 非法配置")
)

func NewErrUnknownColumn(col string) error {
	return fmt.Errorf("%w %s", ErrUnknownColumn, col)
}

func NewErrMissingColumn(record, col string) error {
	return fmt.Errorf("%w %s.%s", ErrMissingColumn, record, col)
}

func NewErrNullColumn(record, col string) error {
	return fmt.Errorf("%w %s.%s", ErrNullColumn, record, col)
}

func NewErrSplitColumnNotFound(col string) error {
	return fmt.Errorf("%w %s", ErrSplitColumnNotFound, col)
}

func NewErrInvalidTagContent(tag string) error {
	return fmt.Errorf("%w: %s", ErrInvalidTagContent, tag)
}

func NewErrUnknownProcedure(name string) error {
	return fmt.Errorf("%w %s", ErrUnknownProcedure, name)
}

func NewErrUnsupportedDriver(driver string) error {
	return fmt.Errorf("%w %q", ErrUnsupportedDriver, driver)
}

func NewErrKeyNotFound(key string) error {
	return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
}

func NewErrInvalidConfig(field string, val any) error {
	return fmt.Errorf("%w %s: %v", ErrInvalidConfig, field, val)
}
