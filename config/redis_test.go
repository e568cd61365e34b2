package config

import (
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestConnectRedis_SkippedInTestEnv(t *testing.T) {
	t.Setenv("APPENV", "test")
	ResetConfigForTest()
	t.Cleanup(ResetConfigForTest)
	t.Cleanup(ResetRedisClientForTest)

	client, err := ConnectRedis()
	assert.NoError(t, err)
	assert.Nil(t, client)
	assert.Nil(t, GetRedisClient())
}

func TestSetRedisClientForTest(t *testing.T) {
	rdb, _ := redismock.NewClientMock()
	SetRedisClientForTest(rdb)
	t.Cleanup(ResetRedisClientForTest)

	assert.Same(t, rdb, GetRedisClient())

	ResetRedisClientForTest()
	assert.Nil(t, GetRedisClient())
}
