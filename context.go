package ormsample

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/coderi421/ormsample/internal/errs"
	"golang.org/x/text/currency"
	"golang.org/x/text/message"
)

var (
	// ErrNoLocation Update/Delete 之前没有成功执行 Insert
	ErrNoLocation  = errs.ErrNoLocation
	ErrKeyNotFound = errs.ErrKeyNotFound
)

// KeyLocationID 是 Insert 写入 State 的 key
const KeyLocationID = "location_id"

// State is the key/value data shared by the steps of one sample run.
type State interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, val string) error
	// ID 就是 RunID
	ID() string
}

// Context carries one step of one sample run through the middleware chain.
type Context struct {
	// Ctx 中间件可以替换它，例如链路追踪会放进去一个 span
	Ctx context.Context

	Sample string
	Step   string
	// RunID 每个 sample 每跑一次生成一个新的
	RunID string

	// Err 步骤返回的 error，中间件可以改写
	Err error
	// Skipped 为 true 的时候 Err 已经被处理过，不算失败
	Skipped bool

	State State

	// 用户可以自由决定在这里存储什么，
	// 主要用于解决在不同 Middleware 之间数据传递的问题
	// UserValues 在初始状态的时候总是 nil，你需要自己手动初始化
	UserValues map[string]any

	out      io.Writer
	printer  *message.Printer
	currency currency.Unit
	lines    int
}

// Printf prints one output line. A trailing newline is added when missing.
func (c *Context) Printf(format string, args ...any) {
	if !strings.HasSuffix(format, "\n") {
		format += "\n"
	}
	_, _ = c.printer.Fprintf(c.out, format, args...)
	c.lines++
}

// Println prints one output line.
func (c *Context) Println(args ...any) {
	_, _ = c.printer.Fprintln(c.out, args...)
	c.lines++
}

// Money formats v in the run's currency, e.g. "$ 10.00".
func (c *Context) Money(v float64) string {
	return c.printer.Sprint(currency.Symbol(c.currency.Amount(v)))
}

// Lines 当前步骤输出了多少行
func (c *Context) Lines() int {
	return c.lines
}

// Status is "ok", "error" or "skipped".
func (c *Context) Status() string {
	switch {
	case c.Skipped:
		return "skipped"
	case c.Err != nil:
		return "error"
	default:
		return "ok"
	}
}

// SetLocationID 记住 Insert 创建的 location
func (c *Context) SetLocationID(id int64) error {
	return c.State.Set(c.Ctx, KeyLocationID, strconv.FormatInt(id, 10))
}

// LocationID returns the location created by this run's Insert step,
// or ErrNoLocation.
func (c *Context) LocationID() (int64, error) {
	val, err := c.State.Get(c.Ctx, KeyLocationID)
	if errors.Is(err, ErrKeyNotFound) {
		return 0, ErrNoLocation
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("ormsample: bad %s %q: %w", KeyLocationID, val, err)
	}
	return id, nil
}

// mapState 默认的进程内 State，只活一个 run
type mapState struct {
	id   string
	mu   sync.RWMutex
	data map[string]string
}

func newMapState(id string) *mapState {
	return &mapState{
		id:   id,
		data: make(map[string]string, 2),
	}
}

func (m *mapState) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.data[key]
	if !ok {
		return "", errs.NewErrKeyNotFound(key)
	}
	return val, nil
}

func (m *mapState) Set(_ context.Context, key string, val string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = val
	return nil
}

func (m *mapState) ID() string {
	return m.id
}
