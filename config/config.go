package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Config holds the application's configuration values.
type Config struct {
	AppName      string `json:"appname"`
	AppEnv       string `json:"appenv"`
	AppPort      uint16 `json:"appport"`
	GinMode      string `json:"ginmode"`
	DBHost       string `json:"dbhost"`
	DBPort       uint16 `json:"dbport"`
	DBName       string `json:"dbname"`
	DBUser       string `json:"dbuser"`
	DBPass       string `json:"dbpass"`
	JWTExpiryHrs int    `json:"jwtexpiryhrs"`
}

var config *Config
var once sync.Once

// LoadConfig loads the environment variables from a .env file, and returns a singleton Config instance.
func LoadConfig() *Config {
	once.Do(func() {
		// A missing .env file is acceptable when configuration comes from
		// real environment variables (tests, containers).
		if err := godotenv.Load(); err != nil && os.Getenv("APPENV") == "" {
			log.Printf("no .env file loaded: %v", err)
		}

		appPort, _ := strconv.ParseUint(os.Getenv("APPPORT"), 10, 16)
		dbPort, _ := strconv.ParseUint(os.Getenv("DBPORT"), 10, 16)
		jwtExpiry, err := strconv.Atoi(os.Getenv("JWT_EXPIRES_HOURS"))
		if err != nil || jwtExpiry <= 0 {
			jwtExpiry = 24
		}

		config = &Config{
			AppName:      os.Getenv("APPNAME"),
			AppEnv:       os.Getenv("APPENV"),
			AppPort:      uint16(appPort),
			GinMode:      os.Getenv("GINMODE"),
			DBHost:       os.Getenv("DBHOST"),
			DBPort:       uint16(dbPort),
			DBName:       os.Getenv("DBNAME"),
			DBUser:       os.Getenv("DBUSER"),
			DBPass:       os.Getenv("DBPASS"),
			JWTExpiryHrs: jwtExpiry,
		}
	})
	return config
}

// ResetConfigForTest clears the singleton so tests can reload configuration
// with different environment variables. Test use only.
func ResetConfigForTest() {
	config = nil
	once = sync.Once{}
}

// ConnectDatabase establishes the application database connection. In the
// test environment an in-memory SQLite database is opened instead so tests
// never require a running MySQL server.
func ConnectDatabase() (*gorm.DB, error) {
	cfg := LoadConfig()
	if cfg.AppEnv == "test" {
		return gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}
