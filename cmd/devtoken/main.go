// Command devtoken prints a signed access token for local testing of the
// payroll API. Production tokens come from the identity service.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/config"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
)

func main() {
	userID := flag.String("user", "dev-operator", "user_id claim")
	role := flag.String("role", "manager", "role claim (owner, manager, employee)")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	token, expiresAt, err := jwt.NewJWTService(cfg.JWT.Secret, *ttl).GenerateAccessToken(*userID, *role)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error generating token:", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires at %s\n", time.Unix(expiresAt, 0).Format(time.RFC3339))
}
