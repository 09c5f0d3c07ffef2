// Package scheduler runs the incremental sync on a fixed daily schedule,
// typically once after the Asian close and once after the US close.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"FinBoard/internal/store"
	"FinBoard/internal/syncer"

	"github.com/robfig/cron/v3"
)

// Scheduler manages the cron-driven sync runs.
type Scheduler struct {
	Cron   *cron.Cron
	Engine *syncer.Engine
	Store  *store.Store
	Ctx    context.Context

	running sync.Mutex // guards against overlapping runs
}

// New creates a scheduler around an existing sync engine.
func New(ctx context.Context, engine *syncer.Engine, s *store.Store) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Engine: engine,
		Store:  s,
		Ctx:    ctx,
	}
}

// Register adds the two daily sync triggers.
func (s *Scheduler) Register(asiaCloseCron, usCloseCron string) error {
	if _, err := s.Cron.AddFunc(asiaCloseCron, s.runSync); err != nil {
		return fmt.Errorf("register asia-close sync: %w", err)
	}
	if _, err := s.Cron.AddFunc(usCloseCron, s.runSync); err != nil {
		return fmt.Errorf("register us-close sync: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes a sync immediately (manual trigger / sync-on-start).
func (s *Scheduler) RunNow() {
	s.runSync()
}

// runSync is one scheduled run. A run that is still in progress when the
// next trigger fires makes the new trigger a no-op; two runs must never
// write concurrently.
func (s *Scheduler) runSync() {
	if !s.running.TryLock() {
		log.Println("[WARN] previous sync run still in progress, skipping this trigger")
		return
	}
	defer s.running.Unlock()

	instruments, err := s.Store.ListInstruments("")
	if err != nil {
		log.Printf("[ERROR] list instruments: %v", err)
		return
	}
	if len(instruments) == 0 {
		log.Println("[WARN] no instruments registered, nothing to sync")
		return
	}

	report, err := s.Engine.SyncAll(s.Ctx, instruments)
	if err != nil {
		log.Printf("[ERROR] sync run aborted: %v", err)
	}
	if report != nil {
		log.Printf("[INFO] sync run finished: %s", report.Summary())
	}
}
