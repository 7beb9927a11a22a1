package memory

import (
	"context"
	"testing"

	"github.com/eachchat/mob-push/pkg/push"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mobIDs(t *testing.T, members []push.AudienceMember) []string {
	t.Helper()

	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.MobID())
	}
	return out
}

func TestStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New[int]()

	members, err := s.FetchAllSubscribers(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, members)

	for _, rid := range []string{"c", "a", "b", "a"} {
		require.NoError(t, s.Subscribe(ctx, 1, rid))
	}
	require.NoError(t, s.Subscribe(ctx, 2, "z"))

	members, err = s.FetchAllSubscribers(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, mobIDs(t, members))

	ok, err := s.IsSubscribed(ctx, 1, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Unsubscribe(ctx, 1, "a"))
	require.NoError(t, s.Unsubscribe(ctx, 1, "missing"))
	require.NoError(t, s.Unsubscribe(ctx, 3, "missing"))

	ok, err = s.IsSubscribed(ctx, 1, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	members, err = s.FetchAllSubscribers(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, mobIDs(t, members))

	require.NoError(t, s.Subscribe(ctx, 1, "a"))
	members, err = s.FetchAllSubscribers(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, mobIDs(t, members))

	ok, err = s.IsSubscribed(ctx, 2, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}
