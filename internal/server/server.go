// Package server contain implementation of go-gin-server and each route handlers
package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"

	"github.com/traci1003/CareerCatalyst/internal/database"
	"github.com/traci1003/CareerCatalyst/internal/platform"
)

// MyServer holds the port, database instance and the platform adapter registry
type MyServer struct {
	port int

	DB       *database.DBinstanceStruct
	Registry *platform.Registry
}

// NewServer construct new Server instance
func NewServer() *http.Server {
	port, _ := strconv.Atoi(os.Getenv("PORT"))

	db, err := database.GetMainDB()
	if err != nil {
		log.Fatalf("Database failed to initialized: %s", err)
	}

	s := &MyServer{
		port:     port,
		DB:       db,
		Registry: DefaultRegistry(),
	}

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}

// DefaultRegistry builds the adapter registry with every built-in platform.
// Base URLs are overridable through the environment for staging setups.
func DefaultRegistry() *platform.Registry {
	return platform.NewRegistry(
		platform.NewLinkedInAdapter(platform.LinkedInConfig{
			BaseURL: os.Getenv("LINKEDIN_API_BASE_URL"),
		}),
		platform.NewIndeedAdapter(platform.IndeedConfig{
			BaseURL: os.Getenv("INDEED_API_BASE_URL"),
		}),
	)
}
