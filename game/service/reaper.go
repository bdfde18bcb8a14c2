package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/duelboard/gomoku/game/room"
)

// Reaper sweeps the registry at a fixed interval and deletes rooms whose
// last activity exceeds the idle threshold. It is the only deletion path
// besides explicit leave and grace expiry; deletion is idempotent so a
// sweep cannot race badly with either.
type Reaper struct {
	registry *room.Registry
	interval time.Duration
	idleFor  time.Duration
	log      *logrus.Entry
}

// NewReaper creates an idle reaper. It does nothing until Run is called.
func NewReaper(registry *room.Registry, interval, idleFor time.Duration, log *logrus.Logger) *Reaper {
	return &Reaper{
		registry: registry,
		interval: interval,
		idleFor:  idleFor,
		log:      log.WithField("component", "reaper"),
	}
}

// Run sweeps until the context is cancelled. Call it on its own
// goroutine.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.WithFields(logrus.Fields{
		"interval": r.interval,
		"idle_for": r.idleFor,
	}).Info("idle reaper started")

	for {
		select {
		case <-ctx.Done():
			r.log.Info("idle reaper stopped")
			return
		case <-ticker.C:
			if evicted := r.registry.SweepIdle(r.idleFor); len(evicted) > 0 {
				r.log.WithField("evicted", len(evicted)).Info("idle sweep complete")
			}
		}
	}
}
