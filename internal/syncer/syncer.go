// Package syncer keeps the local time-series store current with the
// upstream source, one instrument at a time. A failure on one instrument
// never aborts the rest of the run.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"FinBoard/internal/fetcher"
	"FinBoard/internal/model"
	"FinBoard/internal/store"
	"FinBoard/internal/tradecal"
)

// Status classifies the outcome of one instrument's sync.
type Status string

const (
	StatusSynced  Status = "synced"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Outcome reports what happened to a single instrument.
type Outcome struct {
	Symbol      string
	Status      Status
	RowsWritten int
	Reason      string
	Err         error
}

// Report aggregates per-instrument outcomes for one run.
type Report struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Outcomes   []Outcome
}

// Counts returns the number of synced, skipped, and failed instruments.
func (r *Report) Counts() (synced, skipped, failed int) {
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusSynced:
			synced++
		case StatusSkipped:
			skipped++
		case StatusFailed:
			failed++
		}
	}
	return
}

// Summary formats a one-line run summary.
func (r *Report) Summary() string {
	synced, skipped, failed := r.Counts()
	return fmt.Sprintf("synced=%d skipped=%d failed=%d elapsed=%s",
		synced, skipped, failed, r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
}

// Engine drives incremental syncs against the store.
type Engine struct {
	Store   *store.Store
	Fetcher fetcher.Fetcher
	Floor   time.Time     // first date fetched for an empty instrument
	Timeout time.Duration // bound on one upstream call
	Now     func() time.Time

	// Aliases maps a stored symbol back to its upstream symbol for
	// instruments registered under a friendlier identity, e.g. the FX
	// pair stored as "USD_TWD" but quoted upstream as "USDTWD=X".
	Aliases map[string]string
}

// NewEngine creates a sync engine with the given historical floor and
// per-instrument fetch timeout.
func NewEngine(s *store.Store, f fetcher.Fetcher, floor time.Time, timeout time.Duration) *Engine {
	return &Engine{Store: s, Fetcher: f, Floor: floor, Timeout: timeout, Now: time.Now}
}

// SyncAll syncs every given instrument and reports per-instrument
// outcomes. Fetch and normalization failures are confined to their
// instrument; only an unreachable store aborts the run, and then the
// partial report is returned alongside the error.
func (e *Engine) SyncAll(ctx context.Context, instruments []model.Instrument) (*Report, error) {
	report := &Report{StartedAt: e.Now()}
	for _, inst := range instruments {
		outcome := e.syncInstrument(ctx, inst)
		report.Outcomes = append(report.Outcomes, outcome)

		switch outcome.Status {
		case StatusSynced:
			log.Printf("[INFO] sync %s: %d rows written", inst.Symbol, outcome.RowsWritten)
		case StatusSkipped:
			log.Printf("[INFO] sync %s: skipped (%s)", inst.Symbol, outcome.Reason)
		case StatusFailed:
			log.Printf("[ERROR] sync %s: %v", inst.Symbol, outcome.Err)
		}

		if outcome.Err != nil && errors.Is(outcome.Err, store.ErrStorageUnavailable) {
			report.FinishedAt = e.Now()
			return report, fmt.Errorf("sync aborted: %w", outcome.Err)
		}
	}
	report.FinishedAt = e.Now()
	return report, nil
}

func (e *Engine) syncInstrument(ctx context.Context, inst model.Instrument) Outcome {
	out := Outcome{Symbol: inst.Symbol}

	start := e.Floor
	latest, ok, err := e.Store.LatestDate(inst.ID)
	if err != nil {
		out.Status = StatusFailed
		out.Err = err
		return out
	}
	if ok {
		start = latest.AddDate(0, 0, 1)
	}
	end := model.DayOf(e.Now())

	if start.After(end) {
		out.Status = StatusSkipped
		out.Reason = "up to date"
		return out
	}

	if !tradecal.ForRegion(inst.Region).HasTradingDay(start, end) {
		out.Status = StatusSkipped
		out.Reason = "no trading days in window"
		return out
	}

	fetchSymbol := inst.Symbol
	if upstream, ok := e.Aliases[inst.Symbol]; ok {
		fetchSymbol = upstream
	}

	fetchCtx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	table, err := e.Fetcher.Fetch(fetchCtx, fetchSymbol, start, end)
	if err != nil {
		out.Status = StatusFailed
		out.Err = fmt.Errorf("fetch: %w", err)
		return out
	}
	if table.Empty() {
		// Valid: holidays can cover the whole gap window.
		out.Status = StatusSkipped
		out.Reason = "no new data"
		return out
	}

	points := normalize(table)
	if len(points) == 0 {
		// Rows came back but none survived validation; that is a broken
		// symbol, not a quiet market.
		out.Status = StatusFailed
		out.Err = fmt.Errorf("all %d fetched rows invalid", len(table.Rows))
		return out
	}

	written, err := e.Store.UpsertPrices(inst.ID, points)
	if err != nil {
		out.Status = StatusFailed
		out.Err = fmt.Errorf("upsert: %w", err)
		return out
	}

	out.Status = StatusSynced
	out.RowsWritten = written
	return out
}
