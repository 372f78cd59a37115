package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/cerebro/internal/schemas"
	"github.com/jonathan/cerebro/internal/types"
	schemafiles "github.com/jonathan/cerebro/schemas"
)

// benefitColumns are the columns written by PostgresStore.Save, in CopyFrom order.
var benefitColumns = []string{
	"issuer_id", "benefit_uid", "run_id", "title", "geo_scope", "category_hint",
	"source_url", "strategy_used", "extracted_at", "record",
}

const createSchemaSQL = `
CREATE TABLE IF NOT EXISTS benefit_records (
	issuer_id     TEXT        NOT NULL,
	benefit_uid   TEXT        NOT NULL,
	run_id        UUID        NOT NULL,
	title         TEXT        NOT NULL,
	geo_scope     TEXT        NOT NULL,
	category_hint TEXT        NOT NULL,
	source_url    TEXT        NOT NULL,
	strategy_used TEXT        NOT NULL,
	extracted_at  TIMESTAMPTZ NOT NULL,
	record        JSONB       NOT NULL,
	saved_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (issuer_id, benefit_uid)
);
CREATE INDEX IF NOT EXISTS benefit_records_run_id_idx ON benefit_records (run_id);
`

// PostgresStore keeps records in the benefit_records table.
type PostgresStore struct {
	pool      *pgxpool.Pool
	runID     uuid.UUID
	validator *schemas.Validator
}

// Connect establishes a connection pool and ensures the table exists.
// Rows written through the store are stamped with runID.
func Connect(ctx context.Context, databaseURL string, runID uuid.UUID) (*PostgresStore, error) {
	validator, err := schemas.Compile("benefit_record", schemafiles.BenefitRecords)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, createSchemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create benefit_records table: %w", err)
	}

	return &PostgresStore{pool: pool, runID: runID, validator: validator}, nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Save replaces every row of issuerID with records in one transaction.
func (s *PostgresStore) Save(ctx context.Context, issuerID string, records []types.BenefitRecord) error {
	if records == nil {
		records = []types.BenefitRecord{}
	}
	if s.validator != nil {
		if err := s.validator.ValidateValue(records); err != nil {
			return &SaveError{IssuerID: issuerID, Message: "records do not match schema", Cause: err}
		}
	}

	rows, err := recordRows(s.runID, records)
	if err != nil {
		return &SaveError{IssuerID: issuerID, Message: "failed to encode records", Cause: err}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return &SaveError{IssuerID: issuerID, Message: "failed to begin transaction", Cause: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM benefit_records WHERE issuer_id = $1`, issuerID); err != nil {
		return &SaveError{IssuerID: issuerID, Message: "failed to clear previous records", Cause: err}
	}

	if len(rows) > 0 {
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"benefit_records"}, benefitColumns, pgx.CopyFromRows(rows)); err != nil {
			return &SaveError{IssuerID: issuerID, Message: "failed to insert records", Cause: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return &SaveError{IssuerID: issuerID, Message: "failed to commit", Cause: err}
	}
	return nil
}

// Load returns the stored records of issuerID ordered by uid.
func (s *PostgresStore) Load(ctx context.Context, issuerID string) ([]types.BenefitRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT record FROM benefit_records WHERE issuer_id = $1 ORDER BY extracted_at, benefit_uid`,
		issuerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []types.BenefitRecord
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		var rec types.BenefitRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	return records, nil
}

// recordRows converts records into CopyFrom rows matching benefitColumns.
func recordRows(runID uuid.UUID, records []types.BenefitRecord) ([][]any, error) {
	rows := make([][]any, 0, len(records))
	for i := range records {
		rec := &records[i]
		doc, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", rec.BenefitUID, err)
		}
		extractedAt, err := time.Parse(time.RFC3339, rec.Provenance.ExtractedAt)
		if err != nil {
			return nil, fmt.Errorf("record %s: invalid extracted_at: %w", rec.BenefitUID, err)
		}
		rows = append(rows, []any{
			rec.IssuerID,
			rec.BenefitUID,
			runID,
			rec.Title,
			string(rec.GeoScope),
			rec.CategoryHint,
			rec.Provenance.SourceURL,
			rec.Provenance.StrategyUsed,
			extractedAt,
			doc,
		})
	}
	return rows, nil
}
