package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/alienx/bianca/internal/agents"
	"github.com/alienx/bianca/internal/api"
	"github.com/alienx/bianca/internal/config"
	"github.com/alienx/bianca/internal/jobqueue"
	"github.com/alienx/bianca/internal/llm"
	"github.com/alienx/bianca/internal/router"
	"github.com/alienx/bianca/internal/store"
	"github.com/alienx/bianca/internal/whatsapp"
)

// ServeCommand returns the CLI command for starting the agent service.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the Bianca agent service",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port for the API server (overrides config)",
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	port := cfg.Server.Port
	if c.Int("port") > 0 {
		port = c.Int("port")
	}

	ctx := context.Background()

	client, err := llm.NewClient(ctx, llm.Options{
		APIKey:    cfg.AI.APIKey,
		Model:     cfg.AI.Model,
		MaxTokens: cfg.AI.MaxTokens,
	})
	if err != nil {
		return fmt.Errorf("failed to create AI client: %w", err)
	}

	// Storage is optional. Without it the database-backed agents and
	// the event replay endpoints are simply not registered.
	var pool *pgxpool.Pool
	var db *sql.DB
	if cfg.Database.URL != "" {
		pool, err = store.NewPool(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		db, err = store.NewDB(cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
	}

	var sender *whatsapp.Client
	if cfg.WhatsApp.BaseURL != "" {
		sender = whatsapp.NewClient(whatsapp.Options{
			BaseURL:        cfg.WhatsApp.BaseURL,
			RequestsPerSec: cfg.WhatsApp.RequestsPerSec,
			Burst:          cfg.WhatsApp.Burst,
		})
	}

	registry := buildRegistry(client, pool, sender)

	if pool != nil && sender != nil {
		var digest *agents.DailyDigestAgent
		checklist := store.NewChecklistRepo(pool)
		calendar := store.NewCalendarRepo(pool)
		digest = agents.NewDailyDigestAgent(client, checklist, calendar)

		queue, err := jobqueue.NewJobQueue(pool, sender, digest, jobqueue.DefaultQueueConfig())
		if err != nil {
			return fmt.Errorf("failed to create job queue: %w", err)
		}
		for _, sub := range cfg.Digest.Subscribers {
			queue.ScheduleDailyDigest(sub.Username, sub.Number)
		}
		if err := queue.Start(ctx); err != nil {
			return fmt.Errorf("failed to start job queue: %w", err)
		}
		defer func() {
			if err := queue.Stop(context.Background()); err != nil {
				log.Warn().Err(err).Msg("job queue shutdown failed")
			}
		}()
	}

	log.Info().Int("port", port).Msg("starting agent service")

	server := api.NewServer(api.Options{
		Port:       port,
		Planner:    router.New(client),
		Agents:     registry,
		DB:         db,
		AuthSecret: cfg.Server.AuthSecret,
	})
	return server.Start()
}

// buildRegistry wires every agent the current configuration can
// support. pool and sender may be nil.
func buildRegistry(client *llm.Client, pool *pgxpool.Pool, sender *whatsapp.Client) *agents.Registry {
	registry := agents.NewRegistry()

	registry.Register(agents.NewGeneralAgent(client))
	registry.Register(agents.NewResearchAgent(client))
	registry.Register(agents.NewEmailAgent(client))
	registry.Register(agents.NewDocumentAgent(client))
	registry.Register(agents.NewBrainstormAgent(client))
	registry.Register(agents.NewCaseStudyAgent(client))
	registry.Register(agents.NewSummaryAgent())
	registry.Register(agents.NewFlowchartAgent(client))
	registry.Register(agents.NewCallAgent(client))
	registry.Register(agents.NewImageAgent(client))
	registry.Register(agents.NewPlottingAgent(client))
	registry.Register(agents.NewPresentationAgent(client))

	if pool != nil {
		checklist := store.NewChecklistRepo(pool)
		calendar := store.NewCalendarRepo(pool)
		registry.Register(agents.NewChecklistAgent(client, checklist))
		registry.Register(agents.NewCalendarAgent(client, calendar))
		registry.Register(agents.NewDailyDigestAgent(client, checklist, calendar))
	}
	if sender != nil {
		registry.Register(agents.NewWhatsAppAgent(client, sender))
	}

	return registry
}
