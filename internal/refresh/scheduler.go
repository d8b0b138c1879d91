// Package refresh re-evaluates marker colours on a cron schedule, so an event
// turns orange and then red while the server runs without anyone touching it.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/robfig/cron/v3"
)

// Refresher is the part of the sync controller the scheduler drives.
type Refresher interface {
	Refresh(ctx context.Context)
}

// Scheduler runs Refresh on a cron schedule. A nil *Scheduler is valid and
// does nothing, which is what New returns when refreshing is switched off.
type Scheduler struct {
	cron   *cron.Cron
	target Refresher
	log    *slog.Logger
}

// Disabled reports whether spec switches scheduled refresh off.
func Disabled(spec string) bool {
	s := strings.TrimSpace(strings.ToLower(spec))
	return s == "" || s == "off"
}

// New parses spec (standard five-field cron or a descriptor such as
// "@every 1m") and returns a scheduler that is not yet started.
// Returns (nil, nil) when spec is empty or "off".
func New(spec string, target Refresher, log *slog.Logger) (*Scheduler, error) {
	if Disabled(spec) {
		return nil, nil
	}
	if log == nil {
		log = slog.Default()
	}
	s := &Scheduler{
		cron:   cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger))),
		target: target,
		log:    log,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("refresh.New: parse %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) run() {
	s.target.Refresh(context.Background())
	s.log.Debug("scheduled refresh done")
}

// Start begins running the schedule in the background.
func (s *Scheduler) Start() {
	if s == nil {
		return
	}
	s.cron.Start()
	s.log.Info("refresh scheduler started", "next", s.cron.Entries()[0].Next)
}

// Stop halts the schedule and waits for a running refresh to finish or for
// ctx to expire, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) {
	if s == nil {
		return
	}
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("refresh scheduler stop timed out")
	}
}
