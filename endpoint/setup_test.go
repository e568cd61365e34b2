package endpoint

import (
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ferreyrapanozzo/dental-clinic-api/config"
	"github.com/ferreyrapanozzo/dental-clinic-api/util"
)

// TestMain sets up consistent test configuration for all tests in the
// endpoint package. This prevents test order dependency issues caused by the
// singleton config pattern.
func TestMain(m *testing.M) {
	os.Setenv("APPENV", "test")
	os.Setenv("JWT_SECRET", "test-secret-123")
	os.Setenv("GINMODE", "release")

	util.SetJWTSecret("test-secret-123")

	config.ResetConfigForTest()
	config.LoadConfig()

	gin.SetMode(gin.TestMode)

	os.Exit(m.Run())
}
