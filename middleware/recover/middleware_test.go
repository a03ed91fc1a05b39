package recover

import (
	"bytes"
	"context"
	"testing"

	"github.com/coderi421/ormsample"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareBuilder_Build(t *testing.T) {
	var logged any
	builder := MiddlewareBuilder{
		LogFunc: func(ctx *ormsample.Context, err any) {
			logged = err
		},
	}

	r := ormsample.NewRunner(ormsample.WithOutput(&bytes.Buffer{}), ormsample.WithMiddlewares(builder.Build()))
	ctx := r.RunStep(context.Background(), "sqlx", ormsample.Step{Name: "one_to_many", Handle: func(ctx *ormsample.Context) error {
		panic("发生panic 了")
	}})

	assert.ErrorIs(t, ctx.Err, ErrStepPanic)
	assert.Contains(t, ctx.Err.Error(), "发生panic 了")
	assert.Equal(t, "发生panic 了", logged)
	assert.Equal(t, "error", ctx.Status())
}

func TestMiddlewareBuilder_NoPanic(t *testing.T) {
	r := ormsample.NewRunner(ormsample.WithOutput(&bytes.Buffer{}), ormsample.WithMiddlewares((&MiddlewareBuilder{}).Build()))
	ctx := r.RunStep(context.Background(), "sqlx", ormsample.Step{Name: "insert", Handle: func(ctx *ormsample.Context) error {
		return nil
	}})
	assert.NoError(t, ctx.Err)
}
