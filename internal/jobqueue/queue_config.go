/*
Package jobqueue configuration - tunable parameters for the River job
queue backing WhatsApp delivery.

Increase MaxWorkers for higher broadcast throughput, at the cost of
more load on the WhatsApp gateway. Lower MaxRetries for faster failure
feedback in development. Failed jobs retain error information in the
River jobs table.
*/
package jobqueue

import (
	"time"

	"github.com/riverqueue/river"
)

// QueueConfig holds all configurable parameters for the job queue.
type QueueConfig struct {
	// MaxWorkers is the number of concurrent workers processing jobs.
	MaxWorkers int

	// MaxRetries is the maximum retry attempts per job.
	MaxRetries int

	// JobTimeout is the maximum time a single job can run.
	JobTimeout time.Duration

	// DigestInterval is how often the daily digest job runs.
	DigestInterval time.Duration
}

// DefaultQueueConfig returns the default configuration.
func DefaultQueueConfig() *QueueConfig {
	return &QueueConfig{
		// Broadcasts fan out one message per number inside a single
		// job, so a handful of workers is plenty.
		MaxWorkers:     5,
		MaxRetries:     10,
		JobTimeout:     5 * time.Minute,
		DigestInterval: 24 * time.Hour,
	}
}

// DevelopmentQueueConfig returns a configuration that fails fast.
func DevelopmentQueueConfig() *QueueConfig {
	config := DefaultQueueConfig()
	config.MaxWorkers = 2
	config.MaxRetries = 3
	config.JobTimeout = 1 * time.Minute
	return config
}

// RiverQueueConfig converts our config to River's queue configuration format.
func (c *QueueConfig) RiverQueueConfig() map[string]river.QueueConfig {
	return map[string]river.QueueConfig{
		river.QueueDefault: {
			MaxWorkers: c.MaxWorkers,
		},
	}
}
