package recover

import (
	"fmt"

	"github.com/coderi421/ormsample"
	"github.com/coderi421/ormsample/internal/errs"
)

// ErrStepPanic 步骤 panic 之后 ctx.Err 会包装这个错误
var ErrStepPanic = errs.ErrStepPanic

type MiddlewareBuilder struct {
	LogFunc func(ctx *ormsample.Context, err any)
}

func (m *MiddlewareBuilder) Build() ormsample.Middleware {
	return func(next ormsample.HandleFunc) ormsample.HandleFunc {
		return func(ctx *ormsample.Context) {
			defer func() {
				if err := recover(); err != nil {
					ctx.Err = fmt.Errorf("%w: %v", ErrStepPanic, err)
					// 万一 LogFunc 也panic，那我们也无能为力了
					if m.LogFunc != nil {
						m.LogFunc(ctx, err)
					}
				}
			}()
			next(ctx)
		}
	}
}
