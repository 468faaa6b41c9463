// Entry point of the RétroBus mail API: the session authentication
// gateway plus the mail and template routes behind it. The only
// externally reachable service of the webmail; everything it protects
// is gated by the session token it mints at login.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/retrobus-essonne/mail-api/internal/config"
	"github.com/retrobus-essonne/mail-api/internal/server"
)

func main() {
	configPath := flag.String("config", os.Getenv("MAILAPI_CONFIG"), "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	log.Printf("RétroBus mail API listening on :%s", cfg.Port)
	log.Printf("front end origin: %s", cfg.FrontendURL)

	if err := server.NewServer(cfg).Run(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
