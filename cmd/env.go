package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/alienx/bianca/internal/config"
)

// EnvCommand returns the command that prints the effective
// configuration after defaults, file, and environment are merged.
func EnvCommand() *cli.Command {
	return &cli.Command{
		Name:   "env",
		Usage:  "Print the effective configuration",
		Action: runEnv,
	}
}

func runEnv(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Printf("server.port           = %d\n", cfg.Server.Port)
	fmt.Printf("server.auth_secret    = %s\n", mask(cfg.Server.AuthSecret))
	fmt.Printf("ai.provider           = %s\n", cfg.AI.Provider)
	fmt.Printf("ai.api_key            = %s\n", mask(cfg.AI.APIKey))
	fmt.Printf("ai.model              = %s\n", cfg.AI.Model)
	fmt.Printf("ai.max_tokens         = %d\n", cfg.AI.MaxTokens)
	fmt.Printf("database.url          = %s\n", mask(cfg.Database.URL))
	fmt.Printf("whatsapp.base_url     = %s\n", cfg.WhatsApp.BaseURL)
	fmt.Printf("whatsapp.requests_per_sec = %g\n", cfg.WhatsApp.RequestsPerSec)
	fmt.Printf("whatsapp.burst        = %d\n", cfg.WhatsApp.Burst)
	fmt.Printf("chat.service_url      = %s\n", cfg.Chat.ServiceURL)
	fmt.Printf("chat.auth_token       = %s\n", mask(cfg.Chat.AuthToken))
	fmt.Printf("chat.idle_timeout     = %s\n", cfg.Chat.IdleTimeout)
	fmt.Printf("chat.request_timeout  = %s\n", cfg.Chat.RequestTimeout)
	return nil
}

// mask hides secret values while still showing whether one is set.
func mask(s string) string {
	if s == "" {
		return "(unset)"
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****"
}
