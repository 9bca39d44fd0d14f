package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/alienx/bianca/internal/config"
	"github.com/alienx/bianca/internal/whatsapp"
)

// SendCommand returns the CLI command for a one-off WhatsApp send,
// useful for checking gateway connectivity.
func SendCommand() *cli.Command {
	return &cli.Command{
		Name:      "send",
		Usage:     "Send a WhatsApp message through the configured gateway",
		ArgsUsage: "NUMBER MESSAGE",
		Action:    runSend,
	}
}

func runSend(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("usage: send NUMBER MESSAGE")
	}
	number := c.Args().Get(0)
	message := c.Args().Get(1)

	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.WhatsApp.BaseURL == "" {
		return fmt.Errorf("whatsapp base_url is not configured")
	}

	client := whatsapp.NewClient(whatsapp.Options{
		BaseURL:        cfg.WhatsApp.BaseURL,
		RequestsPerSec: cfg.WhatsApp.RequestsPerSec,
		Burst:          cfg.WhatsApp.Burst,
	})

	resp, err := client.Send(c.Context, number, message)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("gateway rejected message: %s", resp.Error)
	}

	fmt.Printf("Message sent (id: %s)\n", resp.MessageID)
	return nil
}
