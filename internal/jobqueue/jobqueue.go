/*
Package jobqueue provides a River-based job queue for WhatsApp
delivery: ad-hoc broadcasts and the periodic daily digest.

For configuration options and tuning parameters, see queue_config.go.
*/
package jobqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/rs/zerolog/log"

	"github.com/alienx/bianca/internal/agents"
	"github.com/alienx/bianca/internal/whatsapp"
)

// BroadcastJobArgs represents the arguments for a WhatsApp broadcast job.
type BroadcastJobArgs struct {
	Numbers []string `json:"numbers"`
	Message string   `json:"message"`
}

// Kind returns the job kind for River.
func (BroadcastJobArgs) Kind() string {
	return "whatsapp_broadcast"
}

// BroadcastWorker delivers a message to a list of numbers.
type BroadcastWorker struct {
	river.WorkerDefaults[BroadcastJobArgs]
	sender *whatsapp.Client
	config *QueueConfig
}

func (w *BroadcastWorker) Timeout(*river.Job[BroadcastJobArgs]) time.Duration {
	return w.config.JobTimeout
}

// Work sends the broadcast. Per-number failures are logged and do not
// stop the rest of the fan-out; the job fails only when every send
// failed, so River retries reach the gateway again.
func (w *BroadcastWorker) Work(ctx context.Context, job *river.Job[BroadcastJobArgs]) error {
	args := job.Args

	results := w.sender.Broadcast(ctx, args.Numbers, args.Message)

	sent := 0
	for _, r := range results {
		if r.Success {
			sent++
			continue
		}
		log.Warn().Str("number", r.Number).Str("error", r.Error).Msg("broadcast delivery failed")
	}

	log.Info().Int("sent", sent).Int("total", len(results)).Msg("broadcast completed")

	if sent == 0 && len(results) > 0 {
		return fmt.Errorf("broadcast reached none of %d recipients", len(results))
	}
	return nil
}

// DigestJobArgs represents the arguments for a daily digest job.
type DigestJobArgs struct {
	Username string `json:"username"`
	Number   string `json:"number"`
}

// Kind returns the job kind for River.
func (DigestJobArgs) Kind() string {
	return "daily_digest"
}

// DigestWorker builds a user's daily briefing and sends it over WhatsApp.
type DigestWorker struct {
	river.WorkerDefaults[DigestJobArgs]
	digest *agents.DailyDigestAgent
	sender *whatsapp.Client
	config *QueueConfig
}

func (w *DigestWorker) Timeout(*river.Job[DigestJobArgs]) time.Duration {
	return w.config.JobTimeout
}

// Work generates and delivers the digest.
func (w *DigestWorker) Work(ctx context.Context, job *river.Job[DigestJobArgs]) error {
	args := job.Args

	data, err := w.digest.Run(ctx, agents.Request{Username: args.Username})
	if err != nil {
		return fmt.Errorf("failed to build digest for %s: %w", args.Username, err)
	}

	resp, err := w.sender.Send(ctx, args.Number, data.Text)
	if err != nil {
		return fmt.Errorf("failed to send digest to %s: %w", args.Number, err)
	}
	if !resp.Success {
		return fmt.Errorf("digest delivery rejected: %s", resp.Error)
	}

	log.Info().Str("username", args.Username).Msg("daily digest delivered")
	return nil
}

// JobQueue manages the River job queue.
type JobQueue struct {
	client *river.Client[pgx.Tx]
	config *QueueConfig
}

// NewJobQueue creates a job queue on the given pool. digest may be nil
// when no database-backed agents are configured; the digest worker is
// only registered when it is present.
func NewJobQueue(pool *pgxpool.Pool, sender *whatsapp.Client, digest *agents.DailyDigestAgent, config *QueueConfig) (*JobQueue, error) {
	if config == nil {
		config = DefaultQueueConfig()
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &BroadcastWorker{sender: sender, config: config})
	if digest != nil {
		river.AddWorker(workers, &DigestWorker{digest: digest, sender: sender, config: config})
	}

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:  config.RiverQueueConfig(),
		Workers: workers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	return &JobQueue{
		client: client,
		config: config,
	}, nil
}

// Start starts the job queue workers.
func (jq *JobQueue) Start(ctx context.Context) error {
	return jq.client.Start(ctx)
}

// Stop stops the job queue workers.
func (jq *JobQueue) Stop(ctx context.Context) error {
	return jq.client.Stop(ctx)
}

// QueueBroadcast queues a WhatsApp broadcast job.
func (jq *JobQueue) QueueBroadcast(ctx context.Context, numbers []string, message string) error {
	args := BroadcastJobArgs{
		Numbers: numbers,
		Message: message,
	}

	_, err := jq.client.Insert(ctx, args, &river.InsertOpts{MaxAttempts: jq.config.MaxRetries})
	if err != nil {
		return fmt.Errorf("failed to queue broadcast job: %w", err)
	}

	return nil
}

// ScheduleDailyDigest registers a recurring digest job for a user.
// Must be called before Start.
func (jq *JobQueue) ScheduleDailyDigest(username, number string) {
	jq.client.PeriodicJobs().Add(river.NewPeriodicJob(
		river.PeriodicInterval(jq.config.DigestInterval),
		func() (river.JobArgs, *river.InsertOpts) {
			return DigestJobArgs{Username: username, Number: number},
				&river.InsertOpts{MaxAttempts: jq.config.MaxRetries}
		},
		&river.PeriodicJobOpts{RunOnStart: false},
	))
}
