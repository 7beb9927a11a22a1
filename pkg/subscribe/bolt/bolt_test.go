package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/eachchat/mob-push/pkg/push"
	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mobIDs(members []push.AudienceMember) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.MobID())
	}
	return out
}

func TestStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "subscriptions.db")

	s, err := Open(log.NewNopLogger(), path)
	require.NoError(t, err)

	members, err := s.FetchAllSubscribers(ctx, "room")
	require.NoError(t, err)
	assert.Empty(t, members)

	ok, err := s.IsSubscribed(ctx, "room", "a")
	require.NoError(t, err)
	assert.False(t, ok)

	for _, rid := range []string{"c", "a", "b", "a"} {
		require.NoError(t, s.Subscribe(ctx, "room", rid))
	}
	require.NoError(t, s.Subscribe(ctx, "other", "z"))

	members, err = s.FetchAllSubscribers(ctx, "room")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, mobIDs(members))

	require.NoError(t, s.Unsubscribe(ctx, "room", "a"))
	require.NoError(t, s.Unsubscribe(ctx, "room", "missing"))
	require.NoError(t, s.Unsubscribe(ctx, "nobody", "missing"))

	ok, err = s.IsSubscribed(ctx, "room", "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Subscribe(ctx, "room", "a"))
	require.NoError(t, s.Close())

	// subscriptions survive a reopen
	s, err = Open(log.NewNopLogger(), path)
	require.NoError(t, err)
	defer s.Close()

	members, err = s.FetchAllSubscribers(ctx, "room")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, mobIDs(members))

	members, err = s.FetchAllSubscribers(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, []string{"z"}, mobIDs(members))
}

func TestNilStore(t *testing.T) {
	t.Parallel()

	var s *Store
	_, err := s.FetchAllSubscribers(context.Background(), "room")
	assert.ErrorIs(t, err, NoDbError{})

	_, err = New(log.NewNopLogger(), nil)
	assert.ErrorIs(t, err, NoDbError{})
}
