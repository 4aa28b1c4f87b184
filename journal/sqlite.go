package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/breaker/market"
)

// SQLiteJournal persists records to a local SQLite database. Not safe for
// concurrent writers; the engine is single-threaded and that is enough.
type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteJournal{db: db}, nil
}

// RecordRun registers the run so its records can be joined later.
func (j *SQLiteJournal) RecordRun(r Run) error {
	_, err := j.db.Exec(`
		INSERT INTO runs (run_id, strategy_id, instrument, started_at)
		VALUES (?, ?, ?, ?)`,
		r.ID, r.StrategyID, r.Instrument, r.StartedAt,
	)
	return err
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(id, run_id, position_id, instrument, direction, volume, entry_price, exit_price, open_time, close_time, realized_pl, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.RunID, t.PositionID, t.Instrument, t.Direction.String(),
		t.Volume, t.EntryPrice, t.ExitPrice, t.OpenTime, t.CloseTime,
		t.RealizedPL, t.Reason,
	)
	return err
}

func (j *SQLiteJournal) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity (run_id, time, balance, equity)
		VALUES (?, ?, ?, ?)`,
		e.RunID, e.Time, e.Balance, e.Equity,
	)
	return err
}

func (j *SQLiteJournal) RecordZoneEvent(z ZoneEvent) error {
	_, err := j.db.Exec(`
		INSERT INTO zone_events (run_id, time, zone_id, event, direction, low, high)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		z.RunID, z.Time, z.ZoneID, z.Event, z.Direction.String(), z.Low, z.High,
	)
	return err
}

// ListTrades returns the trades of a run in close-time order.
func (j *SQLiteJournal) ListTrades(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT id, run_id, position_id, instrument, direction, volume,
		       entry_price, exit_price, open_time, close_time, realized_pl, reason
		FROM trades WHERE run_id = ? ORDER BY close_time`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		var dir string
		if err := rows.Scan(&t.ID, &t.RunID, &t.PositionID, &t.Instrument, &dir,
			&t.Volume, &t.EntryPrice, &t.ExitPrice, &t.OpenTime, &t.CloseTime,
			&t.RealizedPL, &t.Reason); err != nil {
			return nil, err
		}
		t.Direction = parseDirection(dir)
		out = append(out, t)
	}
	return out, rows.Err()
}

// EquityCurve returns a run's snapshots in time order.
func (j *SQLiteJournal) EquityCurve(runID string) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT run_id, time, balance, equity
		FROM equity WHERE run_id = ? ORDER BY time`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.RunID, &e.Time, &e.Balance, &e.Equity); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

func parseDirection(s string) market.Direction {
	if s == market.Down.String() {
		return market.Down
	}
	return market.Up
}
