package memory

import (
	"context"
	"testing"
	"time"

	"github.com/coderi421/ormsample/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := NewStore(time.Minute)

	_, err := s.Get(ctx, "run-1")
	assert.ErrorIs(t, err, state.ErrSessionNotFound)
	assert.ErrorIs(t, s.Refresh(ctx, "run-1"), state.ErrSessionNotFound)

	sess, err := s.Generate(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", sess.ID())

	_, err = s.Generate(ctx, "run-1")
	assert.ErrorIs(t, err, state.ErrSessionExists)

	_, err = sess.Get(ctx, "location_id")
	assert.ErrorIs(t, err, state.ErrKeyNotFound)
	require.NoError(t, sess.Set(ctx, "location_id", "3"))

	got, err := s.Get(ctx, "run-1")
	require.NoError(t, err)
	val, err := got.Get(ctx, "location_id")
	require.NoError(t, err)
	assert.Equal(t, "3", val)

	require.NoError(t, s.Refresh(ctx, "run-1"))
	require.NoError(t, s.Remove(ctx, "run-1"))
	_, err = s.Get(ctx, "run-1")
	assert.ErrorIs(t, err, state.ErrSessionNotFound)
}

func TestStore_Expiration(t *testing.T) {
	ctx := context.Background()
	s := NewStore(50 * time.Millisecond)
	_, err := s.Generate(ctx, "run-1")
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	_, err = s.Get(ctx, "run-1")
	assert.ErrorIs(t, err, state.ErrSessionNotFound)
}
