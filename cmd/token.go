package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/alienx/bianca/internal/api/auth"
	"github.com/alienx/bianca/internal/config"
)

// TokenCommand returns the CLI command for issuing API bearer tokens.
func TokenCommand() *cli.Command {
	return &cli.Command{
		Name:      "token",
		Usage:     "Issue a bearer token for the API",
		ArgsUsage: "USERNAME",
		Action:    runToken,
	}
}

func runToken(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: token USERNAME")
	}
	username := c.Args().Get(0)

	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Server.AuthSecret == "" {
		return fmt.Errorf("server auth_secret is not configured")
	}

	tokenService := auth.NewTokenService(cfg.Server.AuthSecret)
	token, err := tokenService.IssueToken(username)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	fmt.Println(token)
	return nil
}
