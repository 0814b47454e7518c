// Package worker moves mortgages from the local database to the backup
// sheet, driven by queue messages with a periodic sweep as a safety net.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"mortgages/internal/amqp"
	"mortgages/internal/core"
	"mortgages/internal/export"
	"mortgages/internal/storage"
)

// SyncWorker handles synchronization of mortgages from SQLite to the backup
// destination.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	writer    export.MortgageWriter
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, writer export.MortgageWriter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		writer:    writer,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single mortgage sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.MortgageSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	mortgage, err := w.storage.GetMortgage(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get mortgage from storage: %w", err)
	}

	if err := w.syncMortgage(ctx, msg.ID, mortgage); err != nil {
		return fmt.Errorf("sync mortgage: %w", err)
	}

	return nil
}

// ProcessPending exports any mortgages that haven't been synced yet.
// This is a backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncMortgages(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending mortgages: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending mortgages", "count", len(pending))

	for _, p := range pending {
		mortgage, err := w.storage.GetMortgage(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get mortgage", "id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			continue
		}

		if err := w.syncMortgage(ctx, p.ID, mortgage); err != nil {
			slog.ErrorContext(ctx, "Failed to sync mortgage", "id", p.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck drains the pending backlog at worker startup. This is
// useful to recover from missed AMQP messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	// Use a larger batch for the startup drain
	pending, err := w.storage.GetPendingSyncMortgages(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending mortgages for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending mortgages found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending mortgages on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		mortgage, err := w.storage.GetMortgage(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get mortgage for startup sync",
				"id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			errorCount++
			continue
		}

		if err := w.syncMortgage(ctx, p.ID, mortgage); err != nil {
			slog.ErrorContext(ctx, "Failed to sync mortgage during startup",
				"id", p.ID, "error", err)
			errorCount++
			continue
		}

		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *SyncWorker) syncMortgage(ctx context.Context, id int64, m core.Mortgage) error {
	ref, err := w.writer.Append(ctx, m)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to backup: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
		// Don't return an error here, the export actually worked
	}

	slog.InfoContext(ctx, "Successfully synced mortgage",
		"id", id,
		"sheets_ref", ref,
		"name", m.Name)

	return nil
}
