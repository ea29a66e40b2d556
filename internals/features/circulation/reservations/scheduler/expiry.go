package scheduler

import (
	"context"
	"log"
	"time"

	"biblioteca_backend/internals/configs"
	"biblioteca_backend/internals/features/circulation/reservations/repository"
	"biblioteca_backend/internals/features/circulation/reservations/service"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// RegisterExpirySweep: reservasi Pendiente yang lewat expires_at → Expirada.
// Jadwal dari RESERVATION_SWEEP_CRON (default tiap jam).
func RegisterExpirySweep(c *cron.Cron, db *gorm.DB) (cron.EntryID, error) {
	schedule := configs.GetEnv("RESERVATION_SWEEP_CRON", "@every 1h")
	svc := service.NewService(repository.NewGormStore(db))

	id, err := c.AddFunc(schedule, func() { runSweep(svc) })
	if err != nil {
		return 0, err
	}
	log.Printf("[RESERVATIONS][SWEEP] ⏰ terjadwal schedule=%q", schedule)
	return id, nil
}

func runSweep(svc *service.Service) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	n, err := svc.ExpireDue(ctx)
	if err != nil {
		log.Printf("[RESERVATIONS][SWEEP] ❌ gagal: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[RESERVATIONS][SWEEP] ✅ %d reserva(s) expiradas", n)
	}
}
