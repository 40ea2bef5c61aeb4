// Command marketpulse-admintoken mints a bearer token for the admin API.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bobmcallan/marketpulse/internal/app"
	"github.com/bobmcallan/marketpulse/internal/common"
	"github.com/bobmcallan/marketpulse/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to marketpulse.toml (default: MARKETPULSE_CONFIG or config/marketpulse.toml)")
	subject := flag.String("sub", "admin", "token subject, recorded in admin audit logs")
	ttl := flag.Duration("ttl", 0, "token lifetime (default: auth.token_expiry)")
	flag.Parse()

	config, err := common.LoadConfig(app.ResolveConfigPath(*configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	token, err := server.SignAdminToken(*subject, *ttl, &config.Auth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to sign token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
