// Package scheduler owns the background reconciliation timers. Both timers
// are started once at process startup and stop deterministically when the
// process context is cancelled.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/otaviobp/agendasync/internal/service"
	"go.uber.org/zap"
)

const (
	// initialDelay postpones the first reconciliation so startup is not
	// serialized behind a spreadsheet round-trip.
	initialDelay = 30 * time.Second
	// interval is the periodic reconciliation cadence.
	interval = 5 * time.Minute
	// resetHour is the local-time hour of the nightly hard reset.
	resetHour = 4
)

// SyncRunner is the part of the sync service the scheduler drives.
type SyncRunner interface {
	Sincronizar(ctx context.Context) (*service.ResultadoSync, error)
	HardReset(ctx context.Context) (*service.ResultadoImport, error)
}

// Scheduler runs the periodic reconciliation and the nightly hard reset.
type Scheduler struct {
	sync SyncRunner
	log  *zap.Logger
	wg   sync.WaitGroup
}

// New constructs a Scheduler.
func New(sync SyncRunner, log *zap.Logger) *Scheduler {
	return &Scheduler{sync: sync, log: log}
}

// Start launches both timers. They stop when ctx is cancelled; Wait blocks
// until they are gone.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(2)
	go s.runPeriodico(ctx)
	go s.runResetDiario(ctx)
}

// Wait blocks until both timers have exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// runPeriodico waits the initial delay then reconciles every interval.
func (s *Scheduler) runPeriodico(ctx context.Context) {
	defer s.wg.Done()

	select {
	case <-ctx.Done():
		return
	case <-time.After(initialDelay):
	}
	s.sincronizar(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sincronizar(ctx)
		}
	}
}

// runResetDiario sleeps until the next local resetHour boundary, runs the
// destructive reset followed by a reconciliation, then reschedules. The
// delay is recomputed from the wall clock each round so the timer tracks
// 04:00 even across drift.
func (s *Scheduler) runResetDiario(ctx context.Context) {
	defer s.wg.Done()

	for {
		espera := ateProximoReset(time.Now())
		s.log.Info("reset diário agendado", zap.Duration("em", espera))

		select {
		case <-ctx.Done():
			return
		case <-time.After(espera):
		}

		if _, err := s.sync.HardReset(ctx); err != nil {
			s.log.Error("reset diário falhou", zap.Error(err))
			continue
		}
		s.sincronizar(ctx)
	}
}

func (s *Scheduler) sincronizar(ctx context.Context) {
	_, err := s.sync.Sincronizar(ctx)
	switch {
	case errors.Is(err, service.ErrSyncEmAndamento):
		// A manual trigger beat the timer; nothing to do.
		s.log.Info("sincronização periódica pulada", zap.Error(err))
	case err != nil:
		s.log.Error("sincronização periódica falhou", zap.Error(err))
	}
}

// ateProximoReset returns the duration until the next resetHour boundary
// after now, in now's location.
func ateProximoReset(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), resetHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
