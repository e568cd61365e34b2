// main.go
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ferreyrapanozzo/dental-clinic-api/config"
	"github.com/ferreyrapanozzo/dental-clinic-api/endpoint"
	"github.com/ferreyrapanozzo/dental-clinic-api/middleware"
	"github.com/ferreyrapanozzo/dental-clinic-api/model"
	"github.com/ferreyrapanozzo/dental-clinic-api/util"
)

// @title           Dental Clinic API
// @version         1.0
// @description     REST API for a dental clinic: accounts, appointment scheduling and the treatment catalog.
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Load the configuration
	cfg := config.LoadConfig()

	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.Session{},
		&model.Appointment{},
		&model.Treatment{},
		&model.SecurityLog{},
	); err != nil {
		log.Fatalf("Error running migrations: %v", err)
	}
	util.SetSecurityLoggerDB(db)

	if _, err := config.ConnectRedis(); err != nil {
		log.Printf("Warning: redis unavailable, rate limiting and session mirroring degraded: %v", err)
	}

	if err := util.InitGeoIP(os.Getenv("GEOIP_DB_PATH")); err != nil {
		log.Printf("Warning: GeoIP database not loaded, security logs will omit locations: %v", err)
	}
	util.InitUserEmailCacheFromEnv()
	util.InitTreatmentCache(5 * time.Minute)

	util.SetJWTSecret(os.Getenv("JWT_SECRET"))

	seedDefaultProfessional(db)

	// Set Gin mode from config
	gin.SetMode(cfg.GinMode)

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DatabaseMiddleware(db))
	router.Use(middleware.EndpointCallLogger())

	// Basic HTTP handler for root path
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Welcome to %s!", cfg.AppName),
		})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	registerRoutes(router)

	// Start server on specified port
	address := fmt.Sprintf(":%d", cfg.AppPort)
	if err := router.Run(address); err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}

func registerRoutes(router *gin.Engine) {
	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register",
			middleware.RateLimiter(middleware.RateLimitConfig{Limit: 3, Window: time.Hour}),
			endpoint.Register)
		auth.POST("/login",
			middleware.RateLimiter(middleware.RateLimitConfig{Limit: 5, Window: 15 * time.Minute}),
			endpoint.Login)
		auth.POST("/logout", middleware.RequireAuth(), endpoint.Logout)
		auth.GET("/profile", middleware.RequireAuth(), endpoint.Profile)
		auth.GET("/verify", middleware.RequireAuth(), endpoint.VerifyToken)
	}

	users := api.Group("/users", middleware.RequireAuth(), middleware.RequireProfessional())
	{
		users.GET("", endpoint.ListUsers)
		users.GET("/active", endpoint.ListActiveUsers)
		users.GET("/role/:role", endpoint.ListUsersByRole)
		users.GET("/:id", endpoint.GetUser)
		users.DELETE("/:id", endpoint.DeleteUser)
	}

	appointments := api.Group("/appointments", middleware.RequireAuth())
	{
		appointments.GET("", middleware.RequireProfessional(), endpoint.ListAppointments)
		appointments.GET("/date/:date", middleware.RequireProfessional(), endpoint.ListAppointmentsByDate)
		appointments.GET("/user/:userId", middleware.RequireAnyRole(), endpoint.ListAppointmentsByUser)
		appointments.GET("/:id", middleware.RequireAnyRole(), endpoint.GetAppointment)
		appointments.POST("", middleware.RequireProfessional(), endpoint.CreateAppointment)
		appointments.PUT("/:id", middleware.RequireProfessional(), endpoint.UpdateAppointment)
		appointments.PATCH("/:id/state", middleware.RequireProfessional(), endpoint.UpdateAppointmentState)
		appointments.DELETE("/:id", middleware.RequireProfessional(), endpoint.DeleteAppointment)
	}

	treatments := api.Group("/treatments")
	{
		treatments.GET("", middleware.OptionalAuth(), endpoint.ListTreatments)
		treatments.GET("/:id", middleware.OptionalAuth(), endpoint.GetTreatment)
		treatments.POST("", middleware.RequireAuth(), middleware.RequireProfessional(), endpoint.CreateTreatment)
		treatments.PUT("/:id", middleware.RequireAuth(), middleware.RequireProfessional(), endpoint.UpdateTreatment)
		treatments.DELETE("/:id", middleware.RequireAuth(), middleware.RequireProfessional(), endpoint.DeleteTreatment)
	}
}

// seedDefaultProfessional creates the bootstrap professional account when
// SEED_PROFESSIONAL_EMAIL and SEED_PROFESSIONAL_PASSWORD are set and no
// account with that email exists yet.
func seedDefaultProfessional(db *gorm.DB) {
	email := os.Getenv("SEED_PROFESSIONAL_EMAIL")
	password := os.Getenv("SEED_PROFESSIONAL_PASSWORD")
	if email == "" || password == "" {
		return
	}

	salt, err := util.GenerateSalt()
	if err != nil {
		log.Printf("Warning: could not seed professional account: %v", err)
		return
	}
	hashed, err := util.HashPasswordArgon2(password, salt)
	if err != nil {
		log.Printf("Warning: could not seed professional account: %v", err)
		return
	}
	if err := model.SeedProfessional(db, email, hashed, salt); err != nil {
		log.Printf("Warning: could not seed professional account: %v", err)
	}
}
