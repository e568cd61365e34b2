package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitGeoIP_EmptyPathIsNoop(t *testing.T) {
	t.Setenv("GEOIP_DB_PATH", "")
	assert.NoError(t, InitGeoIP(""))
	assert.Nil(t, geoipDB)
}

func TestInitGeoIP_MissingFile(t *testing.T) {
	assert.Error(t, InitGeoIP("/nonexistent/geoip.mmdb"))
}

func TestGetIPLocation_PrivateRangesSkipped(t *testing.T) {
	for _, ip := range []string{"", "127.0.0.1", "::1", "10.1.2.3", "192.168.0.10"} {
		city, country := GetIPLocation(ip)
		assert.Empty(t, city, "ip %q", ip)
		assert.Empty(t, country, "ip %q", ip)
	}
}

func TestGetIPLocation_NoDatabase(t *testing.T) {
	CloseGeoIP()

	city, country := GetIPLocation("8.8.8.8")
	assert.Empty(t, city)
	assert.Empty(t, country)
}

func TestGetGeoIPCacheMetrics(t *testing.T) {
	hits, misses, size := GetGeoIPCacheMetrics()
	assert.GreaterOrEqual(t, hits, int64(0))
	assert.GreaterOrEqual(t, misses, int64(0))
	assert.GreaterOrEqual(t, size, 0)
}
