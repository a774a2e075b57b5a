package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prepBolt(t *testing.T) *Bolt {
	b, err := NewBolt(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, b.Close()) })
	return b
}

func TestBolt_PutGet(t *testing.T) {
	b := prepBolt(t)
	ctx := context.Background()

	u := User{ChatID: "1", Username: "user", RegisteredAt: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, b.Put(ctx, u))

	got, err := b.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	_, err = b.Get(ctx, "2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBolt_Put_Replaces(t *testing.T) {
	b := prepBolt(t)
	ctx := context.Background()

	require.NoError(t, b.Put(ctx, User{ChatID: "1", Username: "user"}))
	require.NoError(t, b.Put(ctx, User{ChatID: "1", Username: "user", Authorized: true}))

	users, err := b.List(ctx, ListRequest{})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.True(t, users[0].Authorized)
}

func TestBolt_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	b, err := NewBolt(dir)
	require.NoError(t, err)
	require.NoError(t, b.Put(ctx, User{ChatID: "1", Username: "user"}))
	require.NoError(t, b.Close())

	b, err = NewBolt(dir)
	require.NoError(t, err)
	defer b.Close()

	u, err := b.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "user", u.Username)
}

func TestBolt_List(t *testing.T) {
	b := prepBolt(t)
	ctx := context.Background()

	base := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, b.Put(ctx, User{ChatID: "b", RegisteredAt: base.Add(time.Hour), Authorized: true}))
	require.NoError(t, b.Put(ctx, User{ChatID: "a", RegisteredAt: base.Add(2 * time.Hour)}))
	require.NoError(t, b.Put(ctx, User{ChatID: "c", RegisteredAt: base, Authorized: true}))

	users, err := b.List(ctx, ListRequest{})
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{users[0].ChatID, users[1].ChatID, users[2].ChatID})

	users, err = b.List(ctx, ListRequest{OnlyAuthorized: true})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "c", users[0].ChatID)
	assert.Equal(t, "b", users[1].ChatID)
}

func TestBolt_Delete(t *testing.T) {
	b := prepBolt(t)
	ctx := context.Background()

	require.NoError(t, b.Put(ctx, User{ChatID: "1"}))
	require.NoError(t, b.Delete(ctx, "1"))

	_, err := b.Get(ctx, "1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, b.Delete(ctx, "1"), ErrNotFound)
}

func TestArticle_Published(t *testing.T) {
	ts, ok := Article{PublishedAt: "2024-05-01T10:20:30Z"}.Published()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC), ts)

	_, ok = Article{PublishedAt: "yesterday"}.Published()
	assert.False(t, ok)

	_, ok = Article{}.Published()
	assert.False(t, ok)
}
