package repository

import (
	"context"
	"database/sql"
	"fmt"

	"TradeBot365/internal/domain/models"
	"TradeBot365/internal/services/identity"
	pkgch "TradeBot365/pkg/clickhouse"
	applogger "TradeBot365/pkg/logger"
)

// AccountSchema holds the idempotent DDL for account join rows. The user_key
// column carries the canonical user id so lookups are insensitive to the raw
// form provisioning wrote.
var AccountSchema = []string{
	`CREATE TABLE IF NOT EXISTS tb365.account_rows (
        user_key String, user_id String,
        csp_id String, csp_name String, api_name String, status String, owner_email String,
        account_id String, account_number String, account_type String,
        balance String, is_live UInt8, account_status String,
        seq UInt64
    ) ENGINE=MergeTree ORDER BY (user_key, seq)`,
}

// CHAccountStore implements AccountStore backed by ClickHouse. Rows arrive
// as full snapshots from the provisioning sync.
type CHAccountStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHAccountStore(ch *pkgch.Client) *CHAccountStore {
	return &CHAccountStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHAccountStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHAccountStore) ListRows(ctx context.Context, userID string) ([]models.AccountRow, error) {
	key := identity.Canonicalize(userID)
	if key == "" {
		return nil, nil
	}
	const q = `SELECT user_id, csp_id, csp_name, api_name, status, owner_email,
            account_id, account_number, account_type, balance, is_live, account_status
        FROM tb365.account_rows WHERE user_key = ? ORDER BY seq ASC`
	rows, err := s.db.QueryContext(ctx, q, key)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse list_account_rows query error",
				applogger.String("user_key", key), applogger.Error(err))
		}
		return nil, fmt.Errorf("list account rows: %w", err)
	}
	defer rows.Close()

	var out []models.AccountRow
	for rows.Next() {
		var r models.AccountRow
		var isLive uint8
		if err := rows.Scan(&r.UserID, &r.CSPID, &r.CSPName, &r.APIName, &r.Status, &r.OwnerEmail,
			&r.AccountID, &r.AccountNumber, &r.AccountType, &r.Balance, &isLive, &r.AccountStatus); err != nil {
			return nil, fmt.Errorf("scan account row: %w", err)
		}
		r.IsLive = isLive != 0
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// ReplaceRows swaps in a full snapshot of the account directory. Row order
// within a user is preserved via seq.
func (s *CHAccountStore) ReplaceRows(ctx context.Context, rows []models.AccountRow) error {
	if _, err := s.db.ExecContext(ctx, "TRUNCATE TABLE tb365.account_rows"); err != nil {
		return fmt.Errorf("truncate account rows: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	const q = `INSERT INTO tb365.account_rows
        (user_key, user_id, csp_id, csp_name, api_name, status, owner_email,
         account_id, account_number, account_type, balance, is_live, account_status, seq)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	seq := make(map[string]uint64)
	for _, r := range rows {
		key := identity.Canonicalize(r.UserID)
		if key == "" {
			continue
		}
		var isLive uint8
		if r.IsLive {
			isLive = 1
		}
		n := seq[key]
		seq[key] = n + 1
		if _, err := s.db.ExecContext(ctx, q,
			key, r.UserID, r.CSPID, r.CSPName, r.APIName, r.Status, r.OwnerEmail,
			r.AccountID, r.AccountNumber, r.AccountType, r.Balance, isLive, r.AccountStatus, n); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse replace_account_rows insert error",
					applogger.String("user_key", key), applogger.Error(err))
			}
			return fmt.Errorf("insert account row: %w", err)
		}
	}
	return nil
}
