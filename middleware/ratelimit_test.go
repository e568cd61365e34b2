package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"

	"github.com/ferreyrapanozzo/dental-clinic-api/config"
)

func setupRateLimitRouter(limit int, window time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimiter(RateLimitConfig{Limit: limit, Window: window}))
	r.POST("/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})
	return r
}

func doLogin(r *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "192.168.1.1:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_WithoutRedis(t *testing.T) {
	config.SetRedisClientForTest(nil)
	defer config.ResetRedisClientForTest()

	r := setupRateLimitRouter(5, 15*time.Minute)

	// Without Redis every request passes.
	for i := 0; i < 10; i++ {
		w := doLogin(r)
		assert.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}
}

func TestRateLimiter_UnderLimit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	config.SetRedisClientForTest(rdb)
	defer config.ResetRedisClientForTest()

	key := "ratelimit:/login:192.168.1.1"
	mock.ExpectIncr(key).SetVal(1)
	mock.ExpectExpire(key, 15*time.Minute).SetVal(true)

	r := setupRateLimitRouter(5, 15*time.Minute)
	w := doLogin(r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_OverLimit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	config.SetRedisClientForTest(rdb)
	defer config.ResetRedisClientForTest()

	key := "ratelimit:/login:192.168.1.1"
	mock.ExpectIncr(key).SetVal(6)
	mock.ExpectExpire(key, 15*time.Minute).SetVal(true)

	r := setupRateLimitRouter(5, 15*time.Minute)
	w := doLogin(r)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many requests")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_RedisFailureFailsOpen(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	config.SetRedisClientForTest(rdb)
	defer config.ResetRedisClientForTest()

	key := "ratelimit:/login:192.168.1.1"
	mock.ExpectIncr(key).SetErr(assert.AnError)

	r := setupRateLimitRouter(5, 15*time.Minute)
	w := doLogin(r)

	// A broken Redis must not lock users out.
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter_DefaultConfig(t *testing.T) {
	config.SetRedisClientForTest(nil)
	defer config.ResetRedisClientForTest()

	r := setupRateLimitRouter(0, 0)
	w := doLogin(r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResetRateLimit_NoRedis(t *testing.T) {
	config.SetRedisClientForTest(nil)
	defer config.ResetRedisClientForTest()

	err := ResetRateLimit("192.168.1.1", "/login")
	assert.Error(t, err)
}

func TestResetRateLimit_DeletesKey(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	config.SetRedisClientForTest(rdb)
	defer config.ResetRedisClientForTest()

	mock.ExpectDel("ratelimit:/login:192.168.1.1").SetVal(1)

	err := ResetRateLimit("192.168.1.1", "/login")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
