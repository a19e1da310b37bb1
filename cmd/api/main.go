// Command api runs the CareerCatalyst backend server.
package main

import (
	"log"
	"net/http"

	"github.com/traci1003/CareerCatalyst/internal/server"
)

func main() {
	srv := server.NewServer()

	log.Printf("Server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %s", err)
	}
}
