package opentelemetry

import (
	"github.com/coderi421/ormsample"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/coderi421/ormsample/middleware/opentelemetry"

type MiddlewareBuilder struct {
	Tracer trace.Tracer
}

func (m *MiddlewareBuilder) Build() ormsample.Middleware {
	if m.Tracer == nil {
		m.Tracer = otel.GetTracerProvider().Tracer(instrumentationName)
	}
	return func(next ormsample.HandleFunc) ormsample.HandleFunc {
		return func(ctx *ormsample.Context) {
			spanCtx, span := m.Tracer.Start(ctx.Ctx, ctx.Sample+"/"+ctx.Step)
			defer span.End()

			span.SetAttributes(attribute.String("sample.name", ctx.Sample))
			span.SetAttributes(attribute.String("sample.step", ctx.Step))
			span.SetAttributes(attribute.String("sample.run_id", ctx.RunID))

			// 后面的中间件和步骤里的数据库调用都挂在这个 span 下面
			ctx.Ctx = spanCtx

			next(ctx)

			span.SetAttributes(attribute.String("sample.status", ctx.Status()))
			span.SetAttributes(attribute.Int("sample.lines", ctx.Lines()))
			if ctx.Err != nil && !ctx.Skipped {
				span.RecordError(ctx.Err)
				span.SetStatus(codes.Error, ctx.Err.Error())
			}
		}
	}
}
