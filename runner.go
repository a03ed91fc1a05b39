// Package ormsample runs the same list of sample queries through several
// mapping libraries and prints what each one returns.
//
// A Runner drives every Step of every Sample through a middleware chain,
// the same way a web framework drives a request through its middlewares.
package ormsample

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type HandleFunc func(ctx *Context)

type Middleware func(next HandleFunc) HandleFunc

type RunnerOption func(r *Runner)

type Runner struct {
	mdls     []Middleware
	out      io.Writer
	printer  *message.Printer
	currency currency.Unit
	// pause 在两个 sample 之间调用，返回 error 会终止后面的 sample
	pause func(ctx context.Context, next Sample) error
	// afterSample 在 sample 的所有步骤结束后调用，失败和取消也会调用
	afterSample []func(ctx context.Context, sample, runID string)
	logger      *zap.Logger
}

func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		out:      os.Stdout,
		printer:  message.NewPrinter(language.AmericanEnglish),
		currency: currency.USD,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func WithOutput(w io.Writer) RunnerOption {
	return func(r *Runner) {
		r.out = w
	}
}

// WithLanguage 决定数字和金额的格式
func WithLanguage(tag language.Tag) RunnerOption {
	return func(r *Runner) {
		r.printer = message.NewPrinter(tag)
	}
}

func WithCurrency(unit currency.Unit) RunnerOption {
	return func(r *Runner) {
		r.currency = unit
	}
}

func WithMiddlewares(mdls ...Middleware) RunnerOption {
	return func(r *Runner) {
		r.mdls = append(r.mdls, mdls...)
	}
}

// WithPause 原来的程序在两个 sample 之间等用户按键
func WithPause(fn func(ctx context.Context, next Sample) error) RunnerOption {
	return func(r *Runner) {
		r.pause = fn
	}
}

// WithAfterSample registers fn to run once a sample's steps are over,
// whether they succeeded, failed or were cancelled.
func WithAfterSample(fn func(ctx context.Context, sample, runID string)) RunnerOption {
	return func(r *Runner) {
		r.afterSample = append(r.afterSample, fn)
	}
}

func WithRunnerLogger(l *zap.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// Use 注册中间件，先注册的在外层
func (r *Runner) Use(mdls ...Middleware) {
	r.mdls = append(r.mdls, mdls...)
}

// Run runs every sample in order. A failing step does not stop the run;
// the errors of all failed steps are joined into the result.
// A cancelled ctx or a failing pause hook stops before the next sample.
func (r *Runner) Run(ctx context.Context, samples ...Sample) error {
	var res []error
	for i, s := range samples {
		if i > 0 && r.pause != nil {
			if err := r.pause(ctx, s); err != nil {
				return errors.Join(append(res, err)...)
			}
		}
		if err := ctx.Err(); err != nil {
			return errors.Join(append(res, err)...)
		}
		if err := r.RunSample(ctx, s); err != nil {
			res = append(res, err)
		}
	}
	return errors.Join(res...)
}

// RunSample runs the steps of s under a fresh run ID and State, then calls
// the WithAfterSample hooks.
func (r *Runner) RunSample(ctx context.Context, s Sample) error {
	runID := uuid.NewString()
	state := newMapState(runID)
	logger := r.logger.With(zap.String("sample", s.Name()), zap.String("run_id", runID))
	defer func() {
		// ctx 可能已经被取消，清理不能跟着失败
		hctx := context.WithoutCancel(ctx)
		for _, fn := range r.afterSample {
			fn(hctx, s.Name(), runID)
		}
	}()

	_, _ = r.printer.Fprintf(r.out, "%s Samples\n", s.Name())
	var res []error
	for _, step := range Steps(s) {
		_, _ = r.printer.Fprintf(r.out, "%s: %s\n", s.Name(), step.Title)
		c := r.runStep(ctx, s.Name(), runID, state, step)
		if c.Err != nil && !c.Skipped {
			logger.Warn("step failed", zap.String("step", step.Name), zap.Error(c.Err))
			res = append(res, fmt.Errorf("%s %s: %w", s.Name(), step.Name, c.Err))
		}
	}
	return errors.Join(res...)
}

// RunStep runs a single step outside of a sample run, with its own run ID
// and State, and returns the finished Context.
func (r *Runner) RunStep(ctx context.Context, sample string, step Step) *Context {
	runID := uuid.NewString()
	return r.runStep(ctx, sample, runID, newMapState(runID), step)
}

func (r *Runner) runStep(ctx context.Context, sample, runID string, state State, step Step) *Context {
	c := &Context{
		Ctx:      ctx,
		Sample:   sample,
		Step:     step.Name,
		RunID:    runID,
		State:    state,
		out:      r.out,
		printer:  r.printer,
		currency: r.currency,
	}
	r.serve(c, step.Handle)
	return c
}

// serve 从后往前把中间件套在步骤外面
func (r *Runner) serve(c *Context, h StepFunc) {
	var root HandleFunc = func(ctx *Context) {
		ctx.Err = h(ctx)
	}
	for i := len(r.mdls) - 1; i >= 0; i-- {
		root = r.mdls[i](root)
	}
	root(c)
}
