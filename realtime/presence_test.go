package realtime

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRegistry_FirstAndLastTransitions(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()
	user := uuid.New()

	first, err := r.Register(ctx, user, "conn-1")
	require.NoError(t, err)
	assert.True(t, first)

	// A second tab is not a new presence transition.
	first, err = r.Register(ctx, user, "conn-2")
	require.NoError(t, err)
	assert.False(t, first)

	online, err := r.IsOnline(ctx, user)
	require.NoError(t, err)
	assert.True(t, online)

	conns, err := r.Connections(ctx, user)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"conn-1", "conn-2"}, conns)

	last, err := r.Unregister(ctx, user, "conn-1")
	require.NoError(t, err)
	assert.False(t, last, "one tab closing is not offline")

	last, err = r.Unregister(ctx, user, "conn-2")
	require.NoError(t, err)
	assert.True(t, last)

	online, err = r.IsOnline(ctx, user)
	require.NoError(t, err)
	assert.False(t, online)
}

func TestMemoryRegistry_UnregisterUnknownIsNoop(t *testing.T) {
	r := NewMemoryRegistry()
	last, err := r.Unregister(context.Background(), uuid.New(), "ghost")
	require.NoError(t, err)
	assert.False(t, last)
}

func TestMemoryRegistry_OnlineUsersAndClear(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	u1 := uuid.New()
	u2 := uuid.New()
	_, err := r.Register(ctx, u1, "c1")
	require.NoError(t, err)
	_, err = r.Register(ctx, u2, "c2")
	require.NoError(t, err)

	online, err := r.OnlineUsers(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{u1, u2}, online)

	require.NoError(t, r.Clear(ctx))
	online, err = r.OnlineUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, online)
}
