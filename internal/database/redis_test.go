package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := ConnectRedis(context.Background(), RedisOptions{Addr: mr.Addr()})
	require.NoError(t, err)
	defer rdb.Close()
	require.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
	assert.True(t, mr.Exists("k"))
}

func TestConnectRedisUnreachable(t *testing.T) {
	_, err := ConnectRedis(context.Background(), RedisOptions{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
