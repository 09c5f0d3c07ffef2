package store

import (
	"database/sql"
	"errors"
	"time"

	"FinBoard/internal/model"
)

// UpsertPrices writes price points with first-write-wins semantics: a row
// that already exists for (instrument, date) is left untouched, so
// re-running a sync over an overlapping range is idempotent. Returns the
// number of rows actually written.
func (s *Store) UpsertPrices(instrumentID int64, points []model.PricePoint) (int, error) {
	if len(points) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, unavailable("begin upsert", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO price_points
		(instrument_id, date, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, unavailable("prepare upsert", err)
	}
	defer stmt.Close()

	written := 0
	for _, p := range points {
		res, err := stmt.Exec(instrumentID, p.Date.Format(model.DateFormat),
			p.Open, p.High, p.Low, p.Close, p.Volume)
		if err != nil {
			return 0, unavailable("upsert price", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			written += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, unavailable("commit upsert", err)
	}
	return written, nil
}

// ReadPrices returns the stored series for an instrument sorted ascending
// by date. Zero start/end values leave that side of the range open.
func (s *Store) ReadPrices(instrumentID int64, start, end time.Time) ([]model.PricePoint, error) {
	query := `SELECT date, open, high, low, close, volume
		FROM price_points WHERE instrument_id = ?`
	args := []any{instrumentID}
	if !start.IsZero() {
		query += ` AND date >= ?`
		args = append(args, start.Format(model.DateFormat))
	}
	if !end.IsZero() {
		query += ` AND date <= ?`
		args = append(args, end.Format(model.DateFormat))
	}
	query += ` ORDER BY date ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, unavailable("read prices", err)
	}
	defer rows.Close()

	var out []model.PricePoint
	for rows.Next() {
		var p model.PricePoint
		var date string
		if err := rows.Scan(&date, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume); err != nil {
			return nil, unavailable("scan price", err)
		}
		d, err := time.Parse(model.DateFormat, date)
		if err != nil {
			return nil, unavailable("parse date", err)
		}
		p.InstrumentID = instrumentID
		p.Date = d
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("read prices", err)
	}
	return out, nil
}

// LatestDate returns the most recent stored trading date for an
// instrument. ok is false when no data exists yet.
func (s *Store) LatestDate(instrumentID int64) (latest time.Time, ok bool, err error) {
	var date sql.NullString
	row := s.db.QueryRow(`SELECT MAX(date) FROM price_points WHERE instrument_id = ?`, instrumentID)
	if err := row.Scan(&date); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, unavailable("latest date", err)
	}
	if !date.Valid || date.String == "" {
		return time.Time{}, false, nil
	}
	d, err := time.Parse(model.DateFormat, date.String)
	if err != nil {
		return time.Time{}, false, unavailable("parse latest date", err)
	}
	return d, true, nil
}

// ReadConvertedPrices returns the cached converted series for an
// instrument sorted ascending by date. An empty result means no
// conversion has been cached yet.
func (s *Store) ReadConvertedPrices(instrumentID int64) ([]model.ConvertedPrice, error) {
	rows, err := s.db.Query(`SELECT p.date, c.converted_price, c.converted_currency
		FROM converted_price_points c
		JOIN price_points p ON p.id = c.price_point_id
		WHERE p.instrument_id = ?
		ORDER BY p.date ASC`, instrumentID)
	if err != nil {
		return nil, unavailable("read converted prices", err)
	}
	defer rows.Close()

	var out []model.ConvertedPrice
	for rows.Next() {
		var cp model.ConvertedPrice
		var date string
		if err := rows.Scan(&date, &cp.Price, &cp.Currency); err != nil {
			return nil, unavailable("scan converted price", err)
		}
		d, err := time.Parse(model.DateFormat, date)
		if err != nil {
			return nil, unavailable("parse converted date", err)
		}
		cp.Date = d
		out = append(out, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("read converted prices", err)
	}
	return out, nil
}

// RefreshConvertedPrices drops the converted-price cache for one
// instrument and regenerates it in full. The cache is never authoritative;
// it only exists to spare the dashboard a join per page load.
func (s *Store) RefreshConvertedPrices(instrumentID int64, prices []model.ConvertedPrice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return unavailable("begin refresh", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM converted_price_points
		WHERE price_point_id IN (SELECT id FROM price_points WHERE instrument_id = ?)`,
		instrumentID); err != nil {
		return unavailable("drop converted cache", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO converted_price_points
		(price_point_id, converted_price, converted_currency)
		SELECT id, ?, ? FROM price_points WHERE instrument_id = ? AND date = ?`)
	if err != nil {
		return unavailable("prepare converted insert", err)
	}
	defer stmt.Close()

	for _, cp := range prices {
		if _, err := stmt.Exec(cp.Price, cp.Currency, instrumentID,
			cp.Date.Format(model.DateFormat)); err != nil {
			return unavailable("insert converted price", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return unavailable("commit refresh", err)
	}
	return nil
}
