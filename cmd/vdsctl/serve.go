package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"oilgas-backend/internal/engine"
	"oilgas-backend/internal/handlers"
)

func runServe(dataDir string, args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	host := fs.String("host", "0.0.0.0", "bind address")
	port := fs.String("port", "8000", "bind port")
	timeout := fs.Duration("timeout", 10*time.Second, "per-request deadline passed to the engine (0 disables it)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	eng, err := engine.New(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vdsctl serve: configuration error: %v\n", err)
		return 3
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), handlers.RequestIDMiddleware(), handlers.DeadlineMiddleware(*timeout))
	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, eng.Health()) })
	v1 := router.Group("/api/v1")
	handlers.NewVDSHandler(eng).RegisterRoutes(v1)

	addr := *host + ":" + *port
	fmt.Printf("vdsctl serve: listening on %s\n", addr)

	srv := &http.Server{Addr: addr, Handler: router, ReadTimeout: 15 * time.Second, WriteTimeout: 15 * time.Second}
	if err := srv.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "vdsctl serve: %v\n", err)
		return 4
	}
	return 0
}
