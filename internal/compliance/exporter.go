package compliance

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/guildboard/guildboard/internal/account"
	"github.com/guildboard/guildboard/internal/consent"
	"github.com/guildboard/guildboard/internal/content"
	"github.com/guildboard/guildboard/internal/database"
	"github.com/guildboard/guildboard/internal/profile"
)

// ExportFlags exposes the kill switch the exporter honors.
type ExportFlags interface {
	IsExportJobsDisabled(ctx context.Context) bool
}

// Exporter assembles data-portability snapshots. Synchronous export
// reads everything inside one transaction so the snapshot is a
// consistent point-in-time view; the async path drives export jobs
// queued for the worker.
type Exporter struct {
	accounts account.Repository
	consents consent.Repository
	profiles profile.Repository
	contents content.Repository
	repo     Repository
	flags    ExportFlags
	tx       database.TxManager
	logger   zerolog.Logger
}

// ExporterConfig holds configuration for the exporter.
type ExporterConfig struct {
	Accounts  account.Repository
	Consents  consent.Repository
	Profiles  profile.Repository
	Contents  content.Repository
	Requests  Repository
	Flags     ExportFlags
	TxManager database.TxManager
	Logger    zerolog.Logger
}

// NewExporter creates a new exporter.
func NewExporter(cfg ExporterConfig) *Exporter {
	return &Exporter{
		accounts: cfg.Accounts,
		consents: cfg.Consents,
		profiles: cfg.Profiles,
		contents: cfg.Contents,
		repo:     cfg.Requests,
		flags:    cfg.Flags,
		tx:       cfg.TxManager,
		logger:   cfg.Logger,
	}
}

// ExportData assembles the full snapshot for a user. Every section
// loads or the whole export fails; partial snapshots are never
// returned. Authentication material (password hash, 2FA secret, OAuth
// provider user ids, session tokens) is excluded.
func (e *Exporter) ExportData(ctx context.Context, userID string) (*Snapshot, error) {
	var snap *Snapshot
	err := e.tx.WithinTx(ctx, func(ctx context.Context) error {
		acct, err := e.accounts.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		links, err := e.accounts.ListOAuthLinks(ctx, userID)
		if err != nil {
			return fmt.Errorf("loading oauth links: %w", err)
		}

		records, err := e.profiles.GetRecords(ctx, userID)
		if err != nil {
			return fmt.Errorf("loading profile records: %w", err)
		}

		consents, err := e.consents.GetAllForUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("loading consents: %w", err)
		}

		history, err := e.consents.ListLogForUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("loading consent history: %w", err)
		}

		summaries, err := e.contents.GetSummaries(ctx, userID)
		if err != nil {
			return fmt.Errorf("loading content summaries: %w", err)
		}

		snap = &Snapshot{
			ExportedAt: time.Now().UTC(),
			Account: AccountData{
				ID:            acct.ID,
				Email:         acct.Email,
				Username:      acct.Username,
				Role:          acct.Role,
				Status:        acct.Status,
				EmailVerified: acct.EmailVerified,
				CreatedAt:     acct.CreatedAt,
			},
			OAuthLinks:     make([]OAuthLinkData, 0, len(links)),
			ProfileRecords: records,
			Consents:       make([]ConsentData, 0, len(consents)),
			ConsentHistory: make([]ConsentLogData, 0, len(history)),
			Content:        summaries,
		}
		for _, link := range links {
			snap.OAuthLinks = append(snap.OAuthLinks, OAuthLinkData{
				Provider: link.Provider,
				LinkedAt: link.CreatedAt,
			})
		}
		for _, c := range consents {
			snap.Consents = append(snap.Consents, ConsentData{
				Category:      c.Category,
				Status:        c.Status,
				PolicyVersion: c.PolicyVersion,
				UpdatedAt:     c.UpdatedAt,
			})
		}
		for _, entry := range history {
			snap.ConsentHistory = append(snap.ConsentHistory, ConsentLogData{
				Category:      entry.Category,
				Status:        entry.Status,
				PolicyVersion: entry.PolicyVersion,
				CreatedAt:     entry.CreatedAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info().
		Str("user_id", userID).
		Msg("data export assembled")

	return snap, nil
}

// RequestExport queues an async export job for the user.
func (e *Exporter) RequestExport(ctx context.Context, userID string) (*ExportRequest, error) {
	if _, err := e.accounts.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	req := NewExportRequest(userID)
	if err := e.repo.CreateExportRequest(ctx, req); err != nil {
		return nil, err
	}

	e.logger.Info().
		Str("user_id", userID).
		Str("request_id", req.ID).
		Msg("export job queued")

	return req, nil
}

// GetExportRequest retrieves an export job by ID.
func (e *Exporter) GetExportRequest(ctx context.Context, id string) (*ExportRequest, error) {
	return e.repo.GetExportRequest(ctx, id)
}

// ListExportRequests returns a user's export jobs, newest first.
func (e *Exporter) ListExportRequests(ctx context.Context, userID string) ([]*ExportRequest, error) {
	return e.repo.ListExportRequests(ctx, userID)
}

// GetSnapshot retrieves the stored snapshot for a ready export job.
func (e *Exporter) GetSnapshot(ctx context.Context, requestID string) (*Snapshot, error) {
	return e.repo.GetSnapshot(ctx, requestID)
}

// RunExportJob executes a queued export job: assemble the snapshot,
// store it, and mark the job ready. A failure marks the job failed with
// the reason; the job itself is not retried, the user files a new one.
func (e *Exporter) RunExportJob(ctx context.Context, requestID string) error {
	if e.flags != nil && e.flags.IsExportJobsDisabled(ctx) {
		e.logger.Warn().
			Str("request_id", requestID).
			Msg("export jobs disabled, leaving job pending")
		return nil
	}

	req, err := e.repo.GetExportRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req.Status != ExportPending {
		return nil
	}

	snap, exportErr := e.ExportData(ctx, req.UserID)
	if exportErr == nil {
		exportErr = e.repo.SaveSnapshot(ctx, req.ID, snap)
	}

	req.UpdatedAt = time.Now()
	if exportErr != nil {
		req.Status = ExportFailed
		req.FailureReason = exportErr.Error()
		if err := e.repo.UpdateExportRequest(ctx, req); err != nil {
			return fmt.Errorf("marking export failed: %w", err)
		}
		e.logger.Error().
			Err(exportErr).
			Str("request_id", req.ID).
			Msg("export job failed")
		return exportErr
	}

	req.Status = ExportReady
	if err := e.repo.UpdateExportRequest(ctx, req); err != nil {
		return fmt.Errorf("marking export ready: %w", err)
	}

	e.logger.Info().
		Str("request_id", req.ID).
		Str("user_id", req.UserID).
		Msg("export job completed")

	return nil
}
