package state

import (
	"context"
	"errors"

	"github.com/coderi421/ormsample"
)

// Manager 把 Store 接到 Runner 上
type Manager struct {
	Store
	SessCtxKey string // 在 UserValues 中的备份，方便其它中间件使用
}

// GetSession returns the session of the step's run, creating it on the
// first step of the run. The session is cached in ctx.UserValues.
func (m *Manager) GetSession(ctx *ormsample.Context) (Session, error) {
	if ctx.UserValues == nil {
		ctx.UserValues = make(map[string]any, 1)
	}
	if val, ok := ctx.UserValues[m.SessCtxKey]; ok {
		return val.(Session), nil
	}

	sess, err := m.Get(ctx.Ctx, ctx.RunID)
	if errors.Is(err, ErrSessionNotFound) {
		sess, err = m.Generate(ctx.Ctx, ctx.RunID)
	}
	if err != nil {
		return nil, err
	}

	ctx.UserValues[m.SessCtxKey] = sess
	return sess, nil
}

// RemoveSession drops the data of a finished run.
func (m *Manager) RemoveSession(ctx *ormsample.Context) error {
	delete(ctx.UserValues, m.SessCtxKey)
	return m.Store.Remove(ctx.Ctx, ctx.RunID)
}

// AfterSample removes the session of runID. Register it with
// ormsample.WithAfterSample so the session goes away with the run,
// whichever step the run stopped at.
func (m *Manager) AfterSample(ctx context.Context, sample, runID string) {
	_ = m.Store.Remove(ctx, runID)
}

// Middleware replaces ctx.State with the run's session from the Store and
// refreshes its expiration after every step.
func (m *Manager) Middleware() ormsample.Middleware {
	return func(next ormsample.HandleFunc) ormsample.HandleFunc {
		return func(ctx *ormsample.Context) {
			sess, err := m.GetSession(ctx)
			if err != nil {
				ctx.Err = err
				return
			}
			ctx.State = sess

			next(ctx)

			if err = m.Refresh(ctx.Ctx, ctx.RunID); err != nil && ctx.Err == nil {
				ctx.Err = err
			}
		}
	}
}
