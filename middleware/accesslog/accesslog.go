package accesslog

import (
	"encoding/json"
	"time"

	"github.com/coderi421/ormsample"
	"go.uber.org/zap"
)

type MiddlewareBuilder struct {
	logFunc func(log string)
}

// NewBuilder 默认写到全局的 zap logger
func NewBuilder() *MiddlewareBuilder {
	return &MiddlewareBuilder{
		logFunc: func(log string) {
			zap.L().Info(log)
		},
	}
}

// LogFunc 这里如果需要配置的参数比较多，可以使用 函数选项模式
func (m *MiddlewareBuilder) LogFunc(fn func(log string)) *MiddlewareBuilder {
	m.logFunc = fn
	return m
}

// ZapLogFunc writes every access log line to l at info level.
func ZapLogFunc(l *zap.Logger) func(log string) {
	return func(log string) {
		l.Info(log)
	}
}

func (m *MiddlewareBuilder) Build() ormsample.Middleware {
	return func(next ormsample.HandleFunc) ormsample.HandleFunc {
		return func(ctx *ormsample.Context) {
			start := time.Now()
			defer func() {
				l := accessLog{
					Sample:   ctx.Sample,
					Step:     ctx.Step,
					RunID:    ctx.RunID,
					Status:   ctx.Status(),
					Lines:    ctx.Lines(),
					Duration: time.Since(start).Milliseconds(),
				}
				if ctx.Err != nil {
					l.Error = ctx.Err.Error()
				}
				data, _ := json.Marshal(l)
				m.logFunc(string(data))
			}()

			next(ctx)
		}
	}
}

type accessLog struct {
	Sample string `json:"sample,omitempty"`
	Step   string `json:"step,omitempty"`
	RunID  string `json:"run_id,omitempty"`
	Status string `json:"status,omitempty"`
	// Lines 步骤输出的行数
	Lines    int    `json:"lines"`
	Duration int64  `json:"duration_ms"`
	Error    string `json:"error,omitempty"`
}
