package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"

	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/models"
)

// ErrRecordNotFound is returned when no record has the requested id
var ErrRecordNotFound = errors.New("record not found")

// RecordStore defines the interface for bet-record persistence
type RecordStore interface {
	Ping(ctx context.Context) error
	CreateRecord(ctx context.Context, in models.BetRecordInput) (*models.BetRecord, error)
	GetRecord(ctx context.Context, id int64) (*models.BetRecord, error)
	ListRecords(ctx context.Context, filters models.RecordFilters) ([]*models.BetRecord, error)
	DeleteRecord(ctx context.Context, id int64) error
	Summary(ctx context.Context, period string, filters models.RecordFilters) (*models.RecordSummary, error)
}

// Ensure RecordsPostgres implements RecordStore
var _ RecordStore = (*RecordsPostgres)(nil)

const schema = `
	CREATE TABLE IF NOT EXISTS bet_records (
		id BIGSERIAL PRIMARY KEY,
		purchased_at TIMESTAMPTZ NOT NULL,
		track VARCHAR(32) NOT NULL,
		race_no SMALLINT NOT NULL CHECK (race_no BETWEEN 1 AND 12),
		bet_type VARCHAR(32) NOT NULL,
		stake INTEGER NOT NULL CHECK (stake >= 0),
		return_amount INTEGER NOT NULL DEFAULT 0 CHECK (return_amount >= 0),
		ticket_serial VARCHAR(16),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_bet_records_purchased_at ON bet_records(purchased_at DESC);
	CREATE INDEX IF NOT EXISTS idx_bet_records_track ON bet_records(track);
`

const recordColumns = `id, purchased_at, track, race_no, bet_type, stake, return_amount, ticket_serial, created_at`

// RecordsPostgres implements RecordStore for PostgreSQL
type RecordsPostgres struct {
	db *sql.DB
}

// NewRecordsPostgres opens the record database and makes sure the table exists
func NewRecordsPostgres(ctx context.Context, dsn string) (*RecordsPostgres, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	log.WithField("component", "db").Info("bet record store ready")
	return &RecordsPostgres{db: db}, nil
}

// Close releases the connection pool
func (r *RecordsPostgres) Close() error {
	return r.db.Close()
}

// Ping checks database connectivity
func (r *RecordsPostgres) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateRecord inserts a record and returns it with its id
func (r *RecordsPostgres) CreateRecord(ctx context.Context, in models.BetRecordInput) (*models.BetRecord, error) {
	query := `
		INSERT INTO bet_records (
			purchased_at, track, race_no, bet_type, stake, return_amount, ticket_serial
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + recordColumns

	row := r.db.QueryRowContext(
		ctx, query,
		in.PurchasedAt,
		in.Track.String(),
		in.RaceNumber,
		in.BetType.String(),
		in.TotalInvestment,
		in.ReturnAmount,
		in.TicketSerial,
	)

	record, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}
	return record, nil
}

// GetRecord retrieves a single record
func (r *RecordsPostgres) GetRecord(ctx context.Context, id int64) (*models.BetRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM bet_records WHERE id = $1`

	record, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query record: %w", err)
	}
	return record, nil
}

// ListRecords retrieves records newest first
func (r *RecordsPostgres) ListRecords(ctx context.Context, filters models.RecordFilters) ([]*models.BetRecord, error) {
	where, args := whereClause(filters)
	query := `SELECT ` + recordColumns + ` FROM bet_records` + where + ` ORDER BY purchased_at DESC, id DESC`

	argPos := len(args) + 1
	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, filters.Limit)
		argPos++
	}

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argPos)
		args = append(args, filters.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := []*models.BetRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// DeleteRecord removes a record
func (r *RecordsPostgres) DeleteRecord(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bet_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Summary aggregates investment and return over the filtered records
func (r *RecordsPostgres) Summary(ctx context.Context, period string, filters models.RecordFilters) (*models.RecordSummary, error) {
	where, args := whereClause(filters)
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(stake), 0),
			COALESCE(SUM(return_amount), 0)
		FROM bet_records` + where

	summary := &models.RecordSummary{Period: period}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&summary.Count,
		&summary.TotalInvestment,
		&summary.TotalReturn,
	)
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}

	summary.Derive()
	return summary, nil
}

// whereClause builds the filter predicate with positional args
func whereClause(filters models.RecordFilters) (string, []interface{}) {
	clause := " WHERE 1=1"
	args := []interface{}{}
	argPos := 1

	if filters.Track != nil {
		clause += fmt.Sprintf(" AND track = $%d", argPos)
		args = append(args, filters.Track.String())
		argPos++
	}

	if filters.Since != nil {
		clause += fmt.Sprintf(" AND purchased_at >= $%d", argPos)
		args = append(args, *filters.Since)
		argPos++
	}

	if filters.Until != nil {
		clause += fmt.Sprintf(" AND purchased_at < $%d", argPos)
		args = append(args, *filters.Until)
	}

	return clause, args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*models.BetRecord, error) {
	var (
		record  models.BetRecord
		track   string
		betType string
		serial  sql.NullString
	)

	err := row.Scan(
		&record.ID, &record.PurchasedAt, &track, &record.RaceNumber, &betType,
		&record.TotalInvestment, &record.ReturnAmount, &serial, &record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	var ok bool
	if record.Track, ok = models.ParseTrack(track); !ok {
		return nil, fmt.Errorf("unknown track %q in record %d", track, record.ID)
	}
	if record.BetType, ok = models.ParseBetType(betType); !ok {
		return nil, fmt.Errorf("unknown bet type %q in record %d", betType, record.ID)
	}
	if serial.Valid {
		record.TicketSerial = &serial.String
	}
	return &record, nil
}
