package store

import (
	"database/sql"
	"errors"
	"fmt"

	"FinBoard/internal/model"
)

// Register inserts an instrument and returns its id. Registration is
// idempotent: an existing symbol returns its existing id unchanged, except
// that an unknown currency is backfilled when the new registration knows
// it. Re-registering with a different region or classification fails with
// ErrDuplicateSymbolConflict.
func (s *Store) Register(inst model.Instrument) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.getBySymbol(inst.Symbol)
	switch {
	case err == nil:
		if existing.Region != inst.Region || existing.Classification != inst.Classification {
			return 0, fmt.Errorf("register %s: %w", inst.Symbol, ErrDuplicateSymbolConflict)
		}
		if existing.Currency == "" && inst.Currency != "" {
			if _, err := s.db.Exec(`UPDATE instruments SET currency = ? WHERE id = ?`,
				inst.Currency, existing.ID); err != nil {
				return 0, unavailable("backfill currency", err)
			}
		}
		return existing.ID, nil
	case errors.Is(err, ErrNotFound):
		// fall through to insert
	default:
		return 0, err
	}

	res, err := s.db.Exec(`INSERT INTO instruments (symbol, name, classification, region, currency)
		VALUES (?, ?, ?, ?, ?)`,
		inst.Symbol, inst.Name, string(inst.Classification), inst.Region, inst.Currency)
	if err != nil {
		return 0, unavailable("insert instrument", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, unavailable("instrument id", err)
	}
	return id, nil
}

// ListInstruments returns the catalog ordered by region, classification,
// symbol for deterministic display. An empty classification means no
// filter.
func (s *Store) ListInstruments(classification model.Classification) ([]model.Instrument, error) {
	query := `SELECT id, symbol, name, classification, region, currency FROM instruments`
	args := []any{}
	if classification != "" {
		query += ` WHERE classification = ?`
		args = append(args, string(classification))
	}
	query += ` ORDER BY region, classification, symbol`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, unavailable("list instruments", err)
	}
	defer rows.Close()

	var out []model.Instrument
	for rows.Next() {
		var inst model.Instrument
		var class string
		if err := rows.Scan(&inst.ID, &inst.Symbol, &inst.Name, &class, &inst.Region, &inst.Currency); err != nil {
			return nil, unavailable("scan instrument", err)
		}
		inst.Classification = model.Classification(class)
		out = append(out, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list instruments", err)
	}
	return out, nil
}

// GetInstrument looks an instrument up by its stored symbol.
func (s *Store) GetInstrument(symbol string) (model.Instrument, error) {
	return s.getBySymbol(symbol)
}

func (s *Store) getBySymbol(symbol string) (model.Instrument, error) {
	var inst model.Instrument
	var class string
	err := s.db.QueryRow(`SELECT id, symbol, name, classification, region, currency
		FROM instruments WHERE symbol = ?`, symbol).
		Scan(&inst.ID, &inst.Symbol, &inst.Name, &class, &inst.Region, &inst.Currency)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Instrument{}, fmt.Errorf("%s: %w", symbol, ErrNotFound)
	}
	if err != nil {
		return model.Instrument{}, unavailable("get instrument", err)
	}
	inst.Classification = model.Classification(class)
	return inst, nil
}
