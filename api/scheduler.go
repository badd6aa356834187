/*
scheduler.go - Automated recurring-entry generation

PURPOSE:
  Materializes due recurring templates on a schedule: once immediately on
  start (the auto-catch-up a fresh session expects) and then at a
  configurable interval. The explicit generate endpoint runs the exact
  same service operation, so the two triggers can never disagree about
  what "already generated" means.

USAGE:
  scheduler := NewGenerationScheduler(billingSvc, log)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: GenerateTemplates endpoint (manual trigger)
  - billing/service.go: GenerateDue
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/contafacil/bill-engine/billing"
)

// GenerationScheduler runs recurring-entry generation in the background.
type GenerationScheduler struct {
	Billing       *billing.Service
	CheckInterval time.Duration
	Enabled       bool

	log    zerolog.Logger
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewGenerationScheduler(billingSvc *billing.Service, log zerolog.Logger) *GenerationScheduler {
	return &GenerationScheduler{
		Billing:       billingSvc,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		log:           log.With().Str("component", "scheduler").Logger(),
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler.
func (gs *GenerationScheduler) Start() {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if !gs.Enabled {
		gs.log.Info().Msg("scheduler disabled, not starting")
		return
	}

	gs.ticker = time.NewTicker(gs.CheckInterval)
	gs.wg.Add(1)
	go gs.run()

	gs.log.Info().Dur("interval", gs.CheckInterval).Msg("scheduler started")
}

// Stop stops the scheduler and waits for an in-flight run to finish.
func (gs *GenerationScheduler) Stop() {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.ticker != nil {
		gs.ticker.Stop()
		close(gs.stop)
		gs.wg.Wait()
		gs.log.Info().Msg("scheduler stopped")
	}
}

func (gs *GenerationScheduler) run() {
	defer gs.wg.Done()

	// Catch up immediately on start.
	gs.generate()

	for {
		select {
		case <-gs.ticker.C:
			gs.generate()
		case <-gs.stop:
			return
		}
	}
}

func (gs *GenerationScheduler) generate() {
	count, err := gs.Billing.GenerateDue(context.Background())
	if err != nil {
		gs.log.Error().Err(err).Msg("recurring generation failed")
		return
	}
	if count > 0 {
		gs.log.Info().Int("generated", count).Msg("materialized due recurring entries")
	}
}
