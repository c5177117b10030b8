// Command issue-token prints a bearer token for the admin API.
//
// Usage:
//
//	issue-token -operator ms-chan [-ttl 24h]
//
// Requires AUTH_JWT_SECRET (or auth.jwt_secret in the config file).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/heartmarshall/spiral-worksheets/internal/auth"
	"github.com/heartmarshall/spiral-worksheets/internal/config"
)

func main() {
	operator := flag.String("operator", "", "operator name recorded with each run")
	ttl := flag.Duration("ttl", 0, "token lifetime (default auth.access_token_ttl)")
	flag.Parse()

	if *operator == "" {
		fmt.Fprintln(os.Stderr, "Usage: issue-token -operator name [-ttl 24h]")
		os.Exit(1)
	}

	cfg, err := config.LoadAuth()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lifetime := cfg.AccessTokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, lifetime).GenerateAccessToken(*operator)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}

	fmt.Fprintf(os.Stderr, "Token for %q, valid until %s\n", *operator, time.Now().Add(lifetime).Format(time.RFC3339))
	fmt.Println(token)
}
