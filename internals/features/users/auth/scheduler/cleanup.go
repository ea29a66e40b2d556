package scheduler

import (
	"context"
	"log"
	"time"

	"biblioteca_backend/internals/configs"
	authRepo "biblioteca_backend/internals/features/users/auth/repository"

	"gorm.io/gorm"
)

// StartBlacklistCleanupScheduler: hapus token_blacklist yang sudah kedaluwarsa, sekali sehari.
// Berhenti saat ctx dibatalkan (graceful shutdown).
func StartBlacklistCleanupScheduler(ctx context.Context, db *gorm.DB) {
	go func() {
		// grace dari env (default: 1 hari setelah exp)
		grace := time.Duration(configs.GetEnvInt("TOKEN_BLACKLIST_GRACE_HOURS", 24)) * time.Hour

		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			runCleanup(ctx, db, grace)

			select {
			case <-ctx.Done():
				log.Println("[CLEANUP] scheduler berhenti")
				return
			case <-ticker.C:
			}
		}
	}()
}

func runCleanup(ctx context.Context, db *gorm.DB, grace time.Duration) {
	log.Println("[CLEANUP] Menjalankan pembersihan token_blacklist...")

	qctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	n, err := authRepo.CleanupExpiredBlacklist(qctx, db, grace)
	switch {
	case err != nil:
		log.Printf("[CLEANUP ERROR] Gagal hapus token: %v", err)
	case n > 0:
		log.Printf("[CLEANUP] %d token kadaluarsa dihapus", n)
	default:
		log.Println("[CLEANUP] Tidak ada token yang memenuhi syarat dihapus")
	}
}
