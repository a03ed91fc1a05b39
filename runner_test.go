package ormsample

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// mockSample 每个步骤都可以单独替换
type mockSample struct {
	name  string
	steps map[string]StepFunc
	calls []string
}

func newMockSample(name string) *mockSample {
	return &mockSample{name: name, steps: map[string]StepFunc{}}
}

func (m *mockSample) call(step string, ctx *Context) error {
	m.calls = append(m.calls, step)
	if fn, ok := m.steps[step]; ok {
		return fn(ctx)
	}
	return nil
}

func (m *mockSample) Name() string                       { return m.name }
func (m *mockSample) SimpleQuery(ctx *Context) error     { return m.call("simple_query", ctx) }
func (m *mockSample) ParamQuery(ctx *Context) error      { return m.call("param_query", ctx) }
func (m *mockSample) ManyToOne(ctx *Context) error       { return m.call("many_to_one", ctx) }
func (m *mockSample) OneToMany(ctx *Context) error       { return m.call("one_to_many", ctx) }
func (m *mockSample) DynamicQuery(ctx *Context) error    { return m.call("dynamic_query", ctx) }
func (m *mockSample) StoredProcedure(ctx *Context) error { return m.call("stored_procedure", ctx) }
func (m *mockSample) Insert(ctx *Context) error          { return m.call("insert", ctx) }
func (m *mockSample) Update(ctx *Context) error          { return m.call("update", ctx) }
func (m *mockSample) Delete(ctx *Context) error          { return m.call("delete", ctx) }

var allSteps = []string{"simple_query", "param_query", "many_to_one", "one_to_many",
	"dynamic_query", "stored_procedure", "insert", "update", "delete"}

func TestSteps(t *testing.T) {
	s := newMockSample("mock")
	steps := Steps(s)
	names := make([]string, 0, len(steps))
	for _, st := range steps {
		names = append(names, st.Name)
		require.NoError(t, st.Handle(&Context{}))
	}
	assert.Equal(t, allSteps, names)
	assert.Equal(t, allSteps, s.calls)
}

func TestRunner_Run(t *testing.T) {
	boom := errors.New("boom")
	first := newMockSample("first")
	first.steps["param_query"] = func(ctx *Context) error {
		ctx.Printf("%d: %s - %s", 1, "AR-5381", "Adjustable Race")
		return boom
	}
	second := newMockSample("second")

	var out bytes.Buffer
	var paused []string
	r := NewRunner(WithOutput(&out), WithPause(func(ctx context.Context, next Sample) error {
		paused = append(paused, next.Name())
		return nil
	}))

	err := r.Run(context.Background(), first, second)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "first param_query")

	// 出错之后后面的步骤照常执行
	assert.Equal(t, allSteps, first.calls)
	assert.Equal(t, allSteps, second.calls)
	assert.Equal(t, []string{"second"}, paused)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, "first Samples", lines[0])
	assert.Equal(t, "first: Simple query", lines[1])
	assert.Equal(t, "first: Parameterized query", lines[2])
	assert.Equal(t, "1: AR-5381 - Adjustable Race", lines[3])
	assert.Contains(t, lines, "second Samples")
	assert.Equal(t, "second: Delete", lines[len(lines)-1])
}

func TestRunner_PauseError(t *testing.T) {
	first, second := newMockSample("first"), newMockSample("second")
	stop := errors.New("stop")
	r := NewRunner(WithOutput(&bytes.Buffer{}), WithPause(func(ctx context.Context, next Sample) error {
		return stop
	}))
	err := r.Run(context.Background(), first, second)
	assert.ErrorIs(t, err, stop)
	assert.Len(t, first.calls, 9)
	assert.Empty(t, second.calls)
}

func TestRunner_Cancelled(t *testing.T) {
	s := newMockSample("first")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewRunner(WithOutput(&bytes.Buffer{})).Run(ctx, s)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, s.calls)
}

func TestRunner_Middlewares(t *testing.T) {
	var trace []string
	mdl := func(name string) Middleware {
		return func(next HandleFunc) HandleFunc {
			return func(ctx *Context) {
				trace = append(trace, name+" before "+ctx.Step)
				next(ctx)
				trace = append(trace, name+" after "+ctx.Status())
			}
		}
	}
	s := newMockSample("mock")
	s.steps["simple_query"] = func(ctx *Context) error {
		trace = append(trace, "handler")
		return nil
	}

	r := NewRunner(WithOutput(&bytes.Buffer{}), WithMiddlewares(mdl("first")))
	r.Use(mdl("second"))
	require.NoError(t, r.RunSample(context.Background(), s))
	assert.Equal(t, []string{
		"first before simple_query",
		"second before simple_query",
		"handler",
		"second after ok",
		"first after ok",
	}, trace[:5])
}

func TestRunner_SkippedIsNotFailure(t *testing.T) {
	s := newMockSample("mock")
	s.steps["stored_procedure"] = func(ctx *Context) error {
		return errors.New("not supported")
	}
	skip := func(next HandleFunc) HandleFunc {
		return func(ctx *Context) {
			next(ctx)
			if ctx.Err != nil {
				ctx.Skipped = true
			}
		}
	}
	r := NewRunner(WithOutput(&bytes.Buffer{}), WithMiddlewares(skip))
	assert.NoError(t, r.RunSample(context.Background(), s))
}

func TestRunner_State(t *testing.T) {
	s := newMockSample("mock")
	var runIDs []string
	var seen []int64
	s.steps["simple_query"] = func(ctx *Context) error {
		runIDs = append(runIDs, ctx.RunID)
		_, err := ctx.LocationID()
		assert.ErrorIs(t, err, ErrNoLocation)
		return nil
	}
	s.steps["insert"] = func(ctx *Context) error {
		return ctx.SetLocationID(int64(len(runIDs)) + 41)
	}
	s.steps["delete"] = func(ctx *Context) error {
		id, err := ctx.LocationID()
		seen = append(seen, id)
		return err
	}

	r := NewRunner(WithOutput(&bytes.Buffer{}))
	require.NoError(t, r.RunSample(context.Background(), s))
	require.NoError(t, r.RunSample(context.Background(), s))

	// 每次运行都有新的 RunID 和 State
	require.Len(t, runIDs, 2)
	assert.NotEqual(t, runIDs[0], runIDs[1])
	assert.Equal(t, []int64{42, 43}, seen)
}

func TestRunner_AfterSample(t *testing.T) {
	testCases := []struct {
		name    string
		steps   func(cancel context.CancelFunc) map[string]StepFunc
		wantErr bool
	}{
		{
			name: "ok",
			steps: func(cancel context.CancelFunc) map[string]StepFunc {
				return map[string]StepFunc{}
			},
		},
		{
			name: "failed step",
			steps: func(cancel context.CancelFunc) map[string]StepFunc {
				return map[string]StepFunc{
					"update": func(ctx *Context) error { return errors.New("boom") },
				}
			},
			wantErr: true,
		},
		{
			// 中途取消，最后一步没有机会清理
			name: "cancelled",
			steps: func(cancel context.CancelFunc) map[string]StepFunc {
				return map[string]StepFunc{
					"insert": func(ctx *Context) error {
						cancel()
						return ctx.Ctx.Err()
					},
				}
			},
			wantErr: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			s := newMockSample("mock")
			s.steps = tc.steps(cancel)

			var runID string
			s.steps["simple_query"] = func(ctx *Context) error {
				runID = ctx.RunID
				return nil
			}
			var calls []string
			r := NewRunner(WithOutput(&bytes.Buffer{}), WithAfterSample(func(hctx context.Context, sample, id string) {
				assert.NoError(t, hctx.Err())
				// 所有步骤都已经跑完
				assert.Len(t, s.calls, 9)
				calls = append(calls, sample+" "+id)
			}))

			err := r.RunSample(ctx, s)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, []string{"mock " + runID}, calls)
		})
	}
}

func TestRunner_RunStep(t *testing.T) {
	var out bytes.Buffer
	var order []string
	mdl := func(name string) Middleware {
		return func(next HandleFunc) HandleFunc {
			return func(ctx *Context) {
				order = append(order, name)
				next(ctx)
			}
		}
	}
	r := NewRunner(WithOutput(&out), WithMiddlewares(mdl("first")))
	r.Use(mdl("second"))

	ctx := r.RunStep(context.Background(), "mock", Step{Name: "insert", Title: "Insert", Handle: func(ctx *Context) error {
		order = append(order, "step")
		return ctx.SetLocationID(3)
	}})
	require.NoError(t, ctx.Err)
	assert.Equal(t, []string{"first", "second", "step"}, order)
	assert.Equal(t, "mock", ctx.Sample)
	assert.Equal(t, "insert", ctx.Step)
	assert.NotEmpty(t, ctx.RunID)
	assert.Equal(t, ctx.RunID, ctx.State.ID())
	id, err := ctx.LocationID()
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
	// 单独运行一个步骤不打印标题
	assert.Empty(t, out.String())
}

func TestContext_Printing(t *testing.T) {
	var out bytes.Buffer
	r := NewRunner(WithOutput(&out), WithLanguage(language.English), WithCurrency(currency.EUR))
	s := newMockSample("mock")
	var money string
	var lines int
	s.steps["dynamic_query"] = func(ctx *Context) error {
		ctx.Printf("%02.0f * %s", 8099.976, "Mountain-100 Silver, 38")
		ctx.Println("done")
		money = ctx.Money(10)
		lines = ctx.Lines()
		return nil
	}
	require.NoError(t, r.RunSample(context.Background(), s))
	assert.Contains(t, out.String(), "8,100 * Mountain-100 Silver, 38\n")
	assert.Contains(t, out.String(), "done\n")
	assert.Contains(t, money, "10.00")
	assert.Equal(t, 2, lines)
}

func TestContext_Status(t *testing.T) {
	testCases := []struct {
		name string
		ctx  *Context
		want string
	}{
		{name: "ok", ctx: &Context{}, want: "ok"},
		{name: "error", ctx: &Context{Err: errors.New("x")}, want: "error"},
		{name: "skipped", ctx: &Context{Err: errors.New("x"), Skipped: true}, want: "skipped"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.ctx.Status())
		})
	}
}
