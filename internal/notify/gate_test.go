package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGate_CooldownWindow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	gate := NewMemoryGate(10 * time.Minute)
	gate.now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := gate.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(5 * time.Minute)
	ok, _ = gate.Allow(ctx, "a")
	assert.False(t, ok, "inside cooldown")

	ok, _ = gate.Allow(ctx, "b")
	assert.True(t, ok, "keys are independent")

	now = now.Add(5 * time.Minute)
	ok, _ = gate.Allow(ctx, "a")
	assert.True(t, ok, "cooldown elapsed")
}

func TestMemoryGate_ReleaseReopensWindow(t *testing.T) {
	gate := NewMemoryGate(time.Hour)
	ctx := context.Background()

	ok, _ := gate.Allow(ctx, "a")
	require.True(t, ok)
	ok, _ = gate.Allow(ctx, "a")
	require.False(t, ok)

	require.NoError(t, gate.Release(ctx, "a"))
	ok, _ = gate.Allow(ctx, "a")
	assert.True(t, ok, "released key is allowed again")
}

func TestMemoryGate_ZeroCooldownAlwaysAllows(t *testing.T) {
	gate := NewMemoryGate(0)
	for i := 0; i < 3; i++ {
		ok, err := gate.Allow(context.Background(), "a")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestRedisGate_Allow(t *testing.T) {
	db, mock := redismock.NewClientMock()
	gate := NewRedisGate(db, 10*time.Minute)
	key := redisKeyPrefix + "6:33@2024-01-01/09:00#3"

	mock.ExpectSetNX(key, "1", 10*time.Minute).SetVal(true)
	mock.ExpectSetNX(key, "1", 10*time.Minute).SetVal(false)

	ok, err := gate.Allow(context.Background(), "6:33@2024-01-01/09:00#3")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = gate.Allow(context.Background(), "6:33@2024-01-01/09:00#3")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisGate_Error(t *testing.T) {
	db, mock := redismock.NewClientMock()
	gate := NewRedisGate(db, time.Minute)

	mock.ExpectSetNX(redisKeyPrefix+"k", "1", time.Minute).SetErr(errors.New("connection refused"))

	ok, err := gate.Allow(context.Background(), "k")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "redis setnx")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisGate_Release(t *testing.T) {
	db, mock := redismock.NewClientMock()
	gate := NewRedisGate(db, time.Minute)

	mock.ExpectDel(redisKeyPrefix + "k").SetVal(1)
	mock.ExpectDel(redisKeyPrefix + "k").SetErr(errors.New("connection refused"))

	require.NoError(t, gate.Release(context.Background(), "k"))
	err := gate.Release(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis del")
	assert.NoError(t, mock.ExpectationsWereMet())
}
