package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"TradeBot365/internal/domain/models"
	pkgch "TradeBot365/pkg/clickhouse"
	applogger "TradeBot365/pkg/logger"
)

// ExecutionSchema holds the idempotent DDL for execution outcomes. Records
// are stored flattened, one row per account outcome; idx keeps the original
// list order so records rebuild deterministically.
var ExecutionSchema = []string{
	`CREATE TABLE IF NOT EXISTS tb365.execution_outcomes (
        record_id String, signal_id String, rec_ts DateTime, rec_error String,
        side UInt8, idx UInt32,
        account_id String, user_id String, name String,
        outcome_ts DateTime, status String, reason String, error_code String
    ) ENGINE=MergeTree ORDER BY (signal_id, rec_ts, record_id, side, idx)`,
}

const (
	sideProcessed = 0
	sideFailed    = 1
)

// CHExecutionStore implements ExecutionStore backed by ClickHouse.
type CHExecutionStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHExecutionStore(ch *pkgch.Client) *CHExecutionStore {
	return &CHExecutionStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHExecutionStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHExecutionStore) StoreExecution(ctx context.Context, rec *models.ExecutionRecord) error {
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("execution record is empty")
	}
	total := len(rec.ProcessedAccounts) + len(rec.FailedAccounts)
	if total == 0 {
		return nil
	}

	values := make([]string, 0, total)
	args := make([]interface{}, 0, total*13)
	appendRow := func(side, idx int, o models.AccountOutcome) {
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			rec.ID, rec.SignalID, rec.Timestamp, rec.ErrorMessage,
			side, idx,
			o.AccountID, o.UserID, o.Name,
			o.Timestamp, string(o.Status), o.Reason, o.ErrorCode,
		)
	}
	for i, o := range rec.ProcessedAccounts {
		appendRow(sideProcessed, i, o)
	}
	for i, o := range rec.FailedAccounts {
		appendRow(sideFailed, i, o)
	}

	q := `INSERT INTO tb365.execution_outcomes
        (record_id, signal_id, rec_ts, rec_error, side, idx,
         account_id, user_id, name, outcome_ts, status, reason, error_code)
        VALUES ` + strings.Join(values, ",")
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("store execution: %w", err)
	}
	return nil
}

func (s *CHExecutionStore) ListBySignal(ctx context.Context, signalID string) ([]models.ExecutionRecord, error) {
	start := time.Now()
	const q = `SELECT record_id, signal_id, rec_ts, rec_error, side, idx,
            account_id, user_id, name, outcome_ts, status, reason, error_code
        FROM tb365.execution_outcomes
        WHERE signal_id = ?
        ORDER BY rec_ts ASC, record_id ASC, side ASC, idx ASC`
	rows, err := s.db.QueryContext(ctx, q, signalID)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse list_by_signal query error",
				applogger.String("signal_id", signalID), applogger.Error(err))
		}
		return nil, fmt.Errorf("list executions: %w", err)
	}
	defer rows.Close()

	index := make(map[string]int)
	out := make([]models.ExecutionRecord, 0, 8)
	for rows.Next() {
		var (
			recID, sigID, recErr string
			recTS                time.Time
			side, idx            int
			o                    models.AccountOutcome
			status               string
		)
		if err := rows.Scan(&recID, &sigID, &recTS, &recErr, &side, &idx,
			&o.AccountID, &o.UserID, &o.Name, &o.Timestamp, &status, &o.Reason, &o.ErrorCode); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		o.Status = models.OutcomeStatus(status)

		i, ok := index[recID]
		if !ok {
			i = len(out)
			index[recID] = i
			out = append(out, models.ExecutionRecord{
				ID: recID, SignalID: sigID, Timestamp: recTS, ErrorMessage: recErr,
			})
		}
		if side == sideFailed {
			out[i].FailedAccounts = append(out[i].FailedAccounts, o)
		} else {
			out[i].ProcessedAccounts = append(out[i].ProcessedAccounts, o)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse list_by_signal ok",
			applogger.String("signal_id", signalID),
			applogger.Int("records", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}
