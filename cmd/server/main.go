// Command server serves the admin HTTP API: stage runs, review decisions,
// the dashboard, the run log and worksheet downloads.
//
// Usage:
//
//	server
//
// Configuration is read from CONFIG_PATH (default ./config.yaml) and the
// environment. AUTH_JWT_SECRET is required.
package main

import (
	"context"
	"log"

	"github.com/heartmarshall/spiral-worksheets/internal/app"
)

func main() {
	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("server: %v", err)
	}
}
