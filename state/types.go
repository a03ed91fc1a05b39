// Package state keeps the per-run data the steps of one sample share,
// such as the location created by Insert, in a pluggable Store.
package state

import (
	"context"

	"github.com/coderi421/ormsample"
	"github.com/coderi421/ormsample/internal/errs"
)

var (
	ErrSessionNotFound = errs.ErrSessionNotFound
	ErrSessionExists   = errs.ErrSessionExists
	ErrKeyNotFound     = errs.ErrKeyNotFound
)

// Session 一次 sample 运行的全部数据，ID 就是 RunID
type Session = ormsample.State

type Store interface {
	// Generate 生成一个 session，id 已经存在的时候返回 ErrSessionExists
	Generate(ctx context.Context, id string) (Session, error)
	// Refresh 这种设计是一直用同一个 id 的
	Refresh(ctx context.Context, id string) error
	Remove(ctx context.Context, id string) error
	// Get 找不到的时候返回 ErrSessionNotFound
	Get(ctx context.Context, id string) (Session, error)
}
