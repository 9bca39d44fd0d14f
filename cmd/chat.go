package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/alienx/bianca/internal/chat"
	"github.com/alienx/bianca/internal/config"
	"github.com/alienx/bianca/internal/conversation"
	"github.com/alienx/bianca/internal/logging"
	"github.com/alienx/bianca/internal/stream"
)

// ChatCommand returns the CLI command for talking to a running agent
// service from the terminal.
func ChatCommand() *cli.Command {
	return &cli.Command{
		Name:      "chat",
		Usage:     "Send a prompt to the agent service and print the results",
		ArgsUsage: "[prompt]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "Username for agents that need one (checklist, calendar)",
			},
			&cli.BoolFlag{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "Keep reading prompts from stdin after the first reply",
			},
		},
		Action: runChat,
	}
}

func runChat(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Chat.ServiceURL == "" {
		return fmt.Errorf("chat service_url is not configured")
	}

	client := chat.NewClient(chat.Options{
		ServiceURL:     cfg.Chat.ServiceURL,
		AuthToken:      cfg.Chat.AuthToken,
		RequestTimeout: cfg.Chat.RequestTimeout,
	})

	sessionLogger, err := logging.StartSessionLogging("cli")
	if err == nil {
		defer sessionLogger.Close()
	}

	state := conversation.NewState()
	session := chat.NewSession(client, state, sessionLogger, cfg.Chat.IdleTimeout)
	user := c.String("user")

	prompt := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if prompt != "" {
		if err := submitAndRender(c, session, prompt, user); err != nil {
			return err
		}
		if !c.Bool("interactive") {
			return nil
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		if err := submitAndRender(c, session, line, user); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
	}
}

func submitAndRender(c *cli.Context, session *chat.Session, prompt, user string) error {
	before := len(session.State().Messages())

	err := session.Submit(c.Context, prompt, user)

	// Render whatever the stream produced, even on a failed submit:
	// the connectivity-error message is part of the conversation.
	for _, msg := range session.State().Messages()[before:] {
		renderMessage(msg)
	}
	return err
}

func renderMessage(msg *conversation.Message) {
	switch msg.Role {
	case conversation.RoleUser:
		return
	case conversation.RoleAssistant:
		fmt.Println(msg.Content)
		if msg.TaskSet == nil {
			return
		}
		for _, task := range msg.TaskSet.Tasks {
			name := conversation.DisplayName(task.AgentKind)
			result := msg.TaskSet.ResultFor(task)
			if result == nil {
				fmt.Printf("  %s: (no result)\n", name)
				continue
			}
			if result.Failed() {
				fmt.Printf("  %s: error: %s\n", name, result.Error)
				continue
			}
			fmt.Printf("  %s:\n%s\n", name, indent(renderResult(result.Data), "    "))
		}
	}
}

func renderResult(data *stream.ResultData) string {
	switch {
	case data.Flowchart != nil:
		return data.Flowchart.Title + "\n" + data.Flowchart.Flowchart
	case data.Email != nil:
		return fmt.Sprintf("To: %s\nSubject: %s\n\n%s", data.Email.To, data.Email.Subject, data.Email.Body)
	case data.Image != nil:
		return fmt.Sprintf("%s (%s)\n%s", data.Image.Topic, data.Image.Style, data.Image.ImageURL)
	case data.Research != nil:
		out := data.Research.Result
		for _, src := range data.Research.Sources {
			out += "\n- " + src
		}
		return out
	case data.Plotting != nil:
		return fmt.Sprintf("%s (%s chart)\n%s", data.Plotting.Title, data.Plotting.ChartType, data.Plotting.ImageURL)
	case data.Checklist != nil:
		if len(data.Checklist.Details) > 0 {
			return data.Checklist.Message + "\n" + strings.Join(data.Checklist.Details, "\n")
		}
		return data.Checklist.Message
	case data.Calendar != nil:
		if len(data.Calendar.Details) > 0 {
			return data.Calendar.Message + "\n" + strings.Join(data.Calendar.Details, "\n")
		}
		return data.Calendar.Message
	case data.WhatsApp != nil:
		return data.WhatsApp.Message
	case data.Presentation != nil:
		return fmt.Sprintf("%s (%d slides)\n%s", data.Presentation.Filename, data.Presentation.Slides, data.Presentation.PptxURL)
	default:
		return data.Text
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
