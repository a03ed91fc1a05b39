package prometheus

import (
	"time"

	"github.com/coderi421/ormsample"
	"github.com/prometheus/client_golang/prometheus"
)

type MiddlewareBuilder struct {
	Namespace string
	Subsystem string
	Name      string
	Help      string
	// Registerer 为 nil 时注册到 prometheus.DefaultRegisterer
	Registerer prometheus.Registerer
}

func (m MiddlewareBuilder) Build() ormsample.Middleware {
	vector := prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name:      m.Name,
		Subsystem: m.Subsystem,
		Namespace: m.Namespace,
		Help:      m.Help,
		Objectives: map[float64]float64{
			0.5:   0.01,
			0.75:  0.01,
			0.90:  0.01,
			0.99:  0.001,  // 99 线
			0.999: 0.0001, // 999 线
		},
	}, []string{"sample", "step", "status"})

	reg := m.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(vector)

	return func(next ormsample.HandleFunc) ormsample.HandleFunc {
		return func(ctx *ormsample.Context) {
			startTime := time.Now()
			defer func() {
				duration := time.Since(startTime).Milliseconds()
				vector.WithLabelValues(ctx.Sample, ctx.Step, ctx.Status()).Observe(float64(duration))
			}()
			next(ctx)
		}
	}
}
