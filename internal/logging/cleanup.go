package logging

import (
	"log/slog"
	"time"

	"github.com/ohse-platform/incident-backend/internal/models"
	"gorm.io/gorm"
)

// System log rows older than this are pruned. Audit questions about a
// case outlive this window through the case itself, not the log table.
const logRetention = 30 * 24 * time.Hour

// StartCleanup prunes expired system_logs once at startup, then daily,
// until done closes.
func StartCleanup(db *gorm.DB, done chan struct{}) {
	go func() {
		prune(db)
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				prune(db)
			case <-done:
				return
			}
		}
	}()
}

func prune(db *gorm.DB) {
	cutoff := time.Now().Add(-logRetention)
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Error("log cleanup failed", "error", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "deleted", result.RowsAffected)
	}
}
