package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"TradeBot365/internal/domain/models"
	pkgch "TradeBot365/pkg/clickhouse"
	applogger "TradeBot365/pkg/logger"
)

// SignalSchema holds the idempotent DDL for the signal tables.
var SignalSchema = []string{
	"CREATE DATABASE IF NOT EXISTS tb365",
	`CREATE TABLE IF NOT EXISTS tb365.signals (
        id String, instrument String, action String, qty String,
        ts DateTime, bot_id String, user_id String, status String
    ) ENGINE=MergeTree ORDER BY (id, ts)`,
	`CREATE TABLE IF NOT EXISTS tb365.error_signals (
        id String, instrument String, action String, qty String,
        ts DateTime, bot_id String, bot_name String, bot_type String,
        user_id String, status String, severity String,
        error_code String, error_message String, connected_user_ids String
    ) ENGINE=MergeTree ORDER BY (ts, id)`,
}

// CHSignalStore implements SignalStore backed by ClickHouse.
type CHSignalStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHSignalStore(ch *pkgch.Client) *CHSignalStore {
	return &CHSignalStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHSignalStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHSignalStore) Init(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHSignalStore) StoreSignal(ctx context.Context, sig *models.Signal) error {
	const q = `INSERT INTO tb365.signals (id, instrument, action, qty, ts, bot_id, user_id, status)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		sig.ID, sig.Instrument, string(sig.Action), sig.Quantity.String(),
		sig.Timestamp, sig.BotID, sig.UserID, sig.Status,
	)
	if err != nil {
		return fmt.Errorf("store signal: %w", err)
	}
	return nil
}

func (s *CHSignalStore) StoreSignalBatch(ctx context.Context, signals []*models.Signal) error {
	if len(signals) == 0 {
		return nil
	}
	values := make([]string, 0, len(signals))
	args := make([]interface{}, 0, len(signals)*8)
	for _, sig := range signals {
		if sig == nil || sig.ID == "" {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			sig.ID, sig.Instrument, string(sig.Action), sig.Quantity.String(),
			sig.Timestamp, sig.BotID, sig.UserID, sig.Status,
		)
	}
	if len(values) == 0 {
		return nil
	}
	q := "INSERT INTO tb365.signals (id, instrument, action, qty, ts, bot_id, user_id, status) VALUES " + strings.Join(values, ",")
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("store signal batch: %w", err)
	}
	return nil
}

func (s *CHSignalStore) GetSignal(ctx context.Context, id string) (*models.Signal, error) {
	const q = `SELECT id, instrument, action, qty, ts, bot_id, user_id, status
        FROM tb365.signals WHERE id = ? ORDER BY ts DESC LIMIT 1`
	row := s.db.QueryRowContext(ctx, q, id)

	var sig models.Signal
	var action, qty string
	if err := row.Scan(&sig.ID, &sig.Instrument, &action, &qty, &sig.Timestamp, &sig.BotID, &sig.UserID, &sig.Status); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("signal %s: %w", id, err)
		}
		return nil, fmt.Errorf("get signal: %w", err)
	}
	sig.Action = models.SignalAction(action)
	sig.Quantity = parseQty(qty)
	return &sig, nil
}

func (s *CHSignalStore) StoreErrorSignal(ctx context.Context, e *models.ErrorSignal) error {
	const q = `INSERT INTO tb365.error_signals
        (id, instrument, action, qty, ts, bot_id, bot_name, bot_type, user_id, status,
         severity, error_code, error_message, connected_user_ids)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		e.ID, e.Instrument, string(e.Action), e.Quantity.String(), e.Timestamp,
		e.BotID, e.BotName, e.BotType, e.UserID, e.Status,
		string(e.Severity), e.ErrorCode, e.ErrorMessage, strings.Join(e.ConnectedUserIDs, ","),
	)
	if err != nil {
		return fmt.Errorf("store error signal: %w", err)
	}
	return nil
}

func (s *CHSignalStore) ListErrorSignals(ctx context.Context, limit int) ([]models.ErrorSignal, error) {
	start := time.Now()
	if limit <= 0 {
		limit = 200
	}
	const q = `SELECT id, instrument, action, qty, ts, bot_id, bot_name, bot_type, user_id, status,
            severity, error_code, error_message, connected_user_ids
        FROM tb365.error_signals ORDER BY ts DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse list_error_signals query error", applogger.Error(err))
		}
		return nil, fmt.Errorf("list error signals: %w", err)
	}
	defer rows.Close()

	out := make([]models.ErrorSignal, 0, limit)
	for rows.Next() {
		var e models.ErrorSignal
		var action, qty, severity, connected string
		if err := rows.Scan(&e.ID, &e.Instrument, &action, &qty, &e.Timestamp,
			&e.BotID, &e.BotName, &e.BotType, &e.UserID, &e.Status,
			&severity, &e.ErrorCode, &e.ErrorMessage, &connected); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse list_error_signals scan error", applogger.Error(err))
			}
			return nil, fmt.Errorf("scan error signal: %w", err)
		}
		e.Action = models.SignalAction(action)
		e.Quantity = parseQty(qty)
		e.Severity = models.Severity(severity)
		if connected != "" {
			e.ConnectedUserIDs = strings.Split(connected, ",")
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse list_error_signals ok",
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHSignalStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHSignalStore) Close() error {
	return nil // pool is owned by pkg/clickhouse
}

// parseQty degrades unparseable quantities to zero rather than failing a read.
func parseQty(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
