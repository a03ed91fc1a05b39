package errhdl

import (
	"errors"

	"github.com/coderi421/ormsample"
)

type MiddlewareBuilder struct {
	// 这种设计只能输出固定的提示
	// 不能做到动态渲染
	notices []notice
}

type notice struct {
	target error
	text   string
}

func NewMiddlewareBuilder() *MiddlewareBuilder {
	return &MiddlewareBuilder{}
}

// AddError 注册要拦截的错误，匹配用 errors.Is，先注册的先匹配
func (m *MiddlewareBuilder) AddError(target error, text string) *MiddlewareBuilder {
	m.notices = append(m.notices, notice{target: target, text: text})
	return m
}

// Build returns a middleware that prints the registered notice for a
// matching step error and marks the step skipped. ctx.Err is kept so that
// outer middlewares can still log it.
func (m *MiddlewareBuilder) Build() ormsample.Middleware {
	return func(next ormsample.HandleFunc) ormsample.HandleFunc {
		return func(ctx *ormsample.Context) {
			next(ctx)
			if ctx.Err == nil {
				return
			}
			for _, n := range m.notices {
				if errors.Is(ctx.Err, n.target) {
					ctx.Println(n.text)
					ctx.Skipped = true
					return
				}
			}
		}
	}
}
