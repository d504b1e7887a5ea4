package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shandysiswandi/tailor/internal/app"
)

// @title           Tailor API
// @version         1.0
// @description     Tailor stores per-user notification channels, investment filters and Cumplo credentials, and publishes every change for downstream consumers.
// @server          http://localhost:8080
// @securityDefinitions.apikey  APIKeyAuth
// @in header
// @name X-API-Key
// @description End-user API key issued on signup.
// @securityDefinitions.apikey  BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a service JWT.
func main() {
	if len(os.Args) > 1 && os.Args[1] == "token" {
		os.Exit(token(os.Args[2:]))
	}

	application := app.New()    // Initialize the application
	wait := application.Start() // Start the application and wait for the termination signal
	<-wait                      // Wait for the application to receive a termination signal
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	application.Stop(ctx) // Stop the application gracefully
}

// token prints a service bearer token, e.g. for the watch renewal job:
//
//	tailor token -subject scheduler -role scheduler
func token(args []string) int {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	subject := fs.String("subject", "", "token subject, usually the calling service")
	role := fs.String("role", "", "casbin role carried by the token")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	tok, err := app.IssueServiceToken(*subject, *role)
	if err != nil {
		slog.Error("failed to issue service token", "error", err)
		return 1
	}

	fmt.Println(tok)
	return 0
}
