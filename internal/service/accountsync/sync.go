package accountsync

import (
	"context"
	"fmt"
	"time"

	"TradeBot365/internal/domain/models"
	drepo "TradeBot365/internal/domain/repository"
	xhttp "TradeBot365/pkg/http"
	applogger "TradeBot365/pkg/logger"
)

// Syncer pulls the CSP account directory from the provisioning API and
// replaces the local snapshot on an interval.
type Syncer struct {
	client   *xhttp.Client
	store    drepo.AccountStore
	metrics  drepo.Metrics
	logger   *applogger.Logger
	apiURL   string
	apiKey   string
	interval time.Duration
}

func New(store drepo.AccountStore, metrics drepo.Metrics, l *applogger.Logger, apiURL, apiKey string, interval time.Duration) *Syncer {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Syncer{
		client:   xhttp.NewClient(xhttp.WithTimeout(30 * time.Second)),
		store:    store,
		metrics:  metrics,
		logger:   l,
		apiURL:   apiURL,
		apiKey:   apiKey,
		interval: interval,
	}
}

type wireRow struct {
	UserID        string `json:"user_id"`
	CSPID         string `json:"csp_id"`
	CSPName       string `json:"csp_name"`
	APIName       string `json:"api_name"`
	Status        string `json:"status"`
	OwnerEmail    string `json:"owner_email"`
	AccountID     string `json:"account_id"`
	AccountNumber string `json:"account_number"`
	AccountType   string `json:"account_type"`
	Balance       string `json:"balance"`
	IsLive        bool   `json:"is_live"`
	AccountStatus string `json:"account_status"`
}

type wireSnapshot struct {
	Rows []wireRow `json:"rows"`
}

// Start runs the sync loop until ctx is cancelled. The first sync happens
// immediately.
func (s *Syncer) Start(ctx context.Context) {
	go func() {
		if err := s.SyncOnce(ctx); err != nil {
			s.logger.Error("account sync error", applogger.Error(err))
		}
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.SyncOnce(ctx); err != nil {
					s.logger.Error("account sync error", applogger.Error(err))
				}
			}
		}
	}()
}

// SyncOnce fetches one snapshot and replaces the stored rows.
func (s *Syncer) SyncOnce(ctx context.Context) error {
	start := time.Now()

	var snap wireSnapshot
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     s.apiURL,
		Headers: map[string]string{"Authorization": "Bearer " + s.apiKey},
	}, &snap)
	if err != nil {
		s.metrics.RecordError("account_sync_fetch")
		return fmt.Errorf("fetch accounts: %w", err)
	}

	rows := make([]models.AccountRow, 0, len(snap.Rows))
	for _, w := range snap.Rows {
		rows = append(rows, models.AccountRow{
			UserID:        w.UserID,
			CSPID:         w.CSPID,
			CSPName:       w.CSPName,
			APIName:       w.APIName,
			Status:        w.Status,
			OwnerEmail:    w.OwnerEmail,
			AccountID:     w.AccountID,
			AccountNumber: w.AccountNumber,
			AccountType:   w.AccountType,
			Balance:       w.Balance,
			IsLive:        w.IsLive,
			AccountStatus: w.AccountStatus,
		})
	}

	if err := s.store.ReplaceRows(ctx, rows); err != nil {
		s.metrics.RecordError("account_sync_store")
		return fmt.Errorf("store accounts: %w", err)
	}

	s.metrics.RecordLatency("account_sync", time.Since(start).Seconds())
	s.logger.Info("account snapshot synced",
		applogger.Int("rows", len(rows)),
		applogger.Int64("elapsed_ms", time.Since(start).Milliseconds()))
	return nil
}
