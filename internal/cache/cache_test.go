package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tripsettle/pkg/api"
)

func newTestCache(t *testing.T, ttl time.Duration) (*BalanceCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := Connect(context.Background(), mr.Addr(), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func sampleReport() *api.GetBalancesResponse {
	return &api.GetBalancesResponse{
		TripID:       "trip-1",
		BaseCurrency: "EUR",
		TotalSpent:   decimal.RequireFromString("90.00"),
		Participants: []api.ParticipantBalance{
			{ParticipantID: "a", DisplayName: "A", NetBalance: decimal.RequireFromString("60")},
			{ParticipantID: "b", DisplayName: "B", NetBalance: decimal.RequireFromString("-30")},
			{ParticipantID: "c", DisplayName: "C", NetBalance: decimal.RequireFromString("-30")},
		},
		Suggestions: []api.SuggestedSettlement{
			{From: api.Party{ID: "b"}, To: api.Party{ID: "a"}, Amount: decimal.RequireFromString("30")},
			{From: api.Party{ID: "c"}, To: api.Party{ID: "a"}, Amount: decimal.RequireFromString("30")},
		},
	}
}

func TestBalanceCache_MissThenHit(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, time.Minute)

	got, ok, err := c.Get(ctx, "trip-1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, "trip-1", 0, sampleReport()))

	got, ok, err = c.Get(ctx, "trip-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "EUR", got.BaseCurrency)
	assert.True(t, got.TotalSpent.Equal(decimal.NewFromInt(90)))
	require.Len(t, got.Suggestions, 2)
	assert.Equal(t, "b", got.Suggestions[0].From.ID)
}

func TestBalanceCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)

	require.NoError(t, c.Set(ctx, "trip-1", 0, sampleReport()))
	assert.True(t, mr.Exists(keyPrefix+"trip-1"))

	require.NoError(t, c.Invalidate(ctx, "trip-1"))
	assert.False(t, mr.Exists(keyPrefix+"trip-1"))

	_, ok, err := c.Get(ctx, "trip-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBalanceCache_SetAfterInvalidateIsStale(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)

	gen, err := c.Generation(ctx, "trip-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	// A write lands while the report is being computed.
	require.NoError(t, c.Invalidate(ctx, "trip-1"))

	err = c.Set(ctx, "trip-1", gen, sampleReport())
	assert.ErrorIs(t, err, ErrStale)
	assert.False(t, mr.Exists(keyPrefix+"trip-1"))

	gen, err = c.Generation(ctx, "trip-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)
	require.NoError(t, c.Set(ctx, "trip-1", gen, sampleReport()))
	assert.True(t, mr.Exists(keyPrefix+"trip-1"))

	// Other trips are unaffected.
	require.NoError(t, c.Set(ctx, "trip-2", 0, sampleReport()))
}

func TestBalanceCache_Expires(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)

	require.NoError(t, c.Set(ctx, "trip-1", 0, sampleReport()))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "trip-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBalanceCache_CorruptEntryIsDropped(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)

	require.NoError(t, mr.Set(keyPrefix+"trip-1", "{not json"))

	_, ok, err := c.Get(ctx, "trip-1")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists(keyPrefix+"trip-1"))
}

func TestBalanceCache_NilIsDisabled(t *testing.T) {
	ctx := context.Background()
	var c *BalanceCache

	_, ok, err := c.Get(ctx, "trip-1")
	assert.NoError(t, err)
	assert.False(t, ok)
	gen, err := c.Generation(ctx, "trip-1")
	assert.NoError(t, err)
	assert.Zero(t, gen)
	assert.NoError(t, c.Set(ctx, "trip-1", 0, sampleReport()))
	assert.NoError(t, c.Invalidate(ctx, "trip-1"))
	assert.NoError(t, c.Close())
	assert.Nil(t, New(nil, time.Minute))
}

func TestConnect_Errors(t *testing.T) {
	_, err := Connect(context.Background(), "", time.Minute)
	assert.Error(t, err)

	_, err = Connect(context.Background(), "redis://%zz", time.Minute)
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = Connect(ctx, addr, time.Minute)
	assert.Error(t, err)
}

func TestConnect_URL(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := Connect(context.Background(), "redis://"+mr.Addr()+"/0", time.Minute)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(context.Background(), "trip-2", 0, sampleReport()))
	assert.True(t, mr.Exists(keyPrefix+"trip-2"))
}
