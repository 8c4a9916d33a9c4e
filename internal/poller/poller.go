package poller

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/vinelogic/vineyard-telemetry/internal/cloud"
	"github.com/vinelogic/vineyard-telemetry/internal/telemetry"
)

// Poller periodically pulls the cloud API and feeds the nested payload into
// the core service. A failed tick is logged and skipped; the fixed interval
// retries naturally without backoff amplification.
type Poller struct {
	scheduler *gocron.Scheduler
	client    *cloud.Client
	service   *telemetry.Service
	interval  time.Duration
}

// New creates a Poller fetching every interval.
func New(client *cloud.Client, service *telemetry.Service, interval time.Duration) *Poller {
	s := gocron.NewScheduler(time.UTC)
	return &Poller{
		scheduler: s,
		client:    client,
		service:   service,
		interval:  interval,
	}
}

// Start schedules the poll job and starts the underlying scheduler. The
// first run fires one interval after start, leaving the process time to
// finish coming up.
func (p *Poller) Start() error {
	seconds := int(p.interval.Seconds())
	if seconds <= 0 {
		seconds = 60
	}

	_, err := p.scheduler.Every(seconds).Seconds().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		payload, err := p.client.FetchRealtime(ctx)
		if err != nil {
			log.Printf("poller: cloud fetch failed, skipping cycle: %v", err)
			return
		}

		if stored := p.service.Ingest(payload, telemetry.SourceNested); !stored {
			log.Printf("poller: cloud payload carried no usable metric; nothing stored")
		}
	})
	if err != nil {
		return err
	}

	p.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (p *Poller) Stop() {
	if p.scheduler != nil {
		p.scheduler.Stop()
	}
}
