// VDS datasheet API server.
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"oilgas-backend/internal/engine"
	"oilgas-backend/internal/handlers"
)

const defaultRequestTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	if os.Getenv("APP_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir := os.Getenv("VDS_DATA_DIR")
	if dataDir == "" {
		dataDir = "testdata/data"
	}

	eng, err := engine.New(dataDir)
	if err != nil {
		log.Fatalf("failed to load engine data from %s: %v", dataDir, err)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(handlers.RequestIDMiddleware())
	router.Use(handlers.DeadlineMiddleware(requestTimeout()))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, eng.Health())
	})

	v1 := router.Group("/api/v1")
	handlers.NewVDSHandler(eng).RegisterRoutes(v1)

	startServer(router)
}

// requestTimeout reads VDS_REQUEST_TIMEOUT_SECONDS, falling back to
// defaultRequestTimeout when it is unset or not a positive integer.
func requestTimeout() time.Duration {
	raw := os.Getenv("VDS_REQUEST_TIMEOUT_SECONDS")
	if raw == "" {
		return defaultRequestTimeout
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(seconds) * time.Second
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func startServer(router *gin.Engine) {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8000"
	}

	fmt.Printf("Starting VDS datasheet API server on port %s\n", port)
	fmt.Printf("Health check: http://localhost:%s/health\n", port)
	fmt.Printf("Generate datasheet: http://localhost:%s/api/v1/datasheet/BSFA1R\n", port)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.Fatal(srv.ListenAndServe())
}
