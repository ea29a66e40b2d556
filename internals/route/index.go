// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	authorRoute "biblioteca_backend/internals/features/catalog/authors/route"
	bookRoute "biblioteca_backend/internals/features/catalog/books/route"
	categoryRoute "biblioteca_backend/internals/features/catalog/categories/route"
	publisherRoute "biblioteca_backend/internals/features/catalog/publishers/route"
	auditRoute "biblioteca_backend/internals/features/circulation/audit/route"
	fineRoute "biblioteca_backend/internals/features/circulation/fines/route"
	loanRoute "biblioteca_backend/internals/features/circulation/loans/route"
	reportRoute "biblioteca_backend/internals/features/circulation/reports/route"
	reservationRoute "biblioteca_backend/internals/features/circulation/reservations/route"
	authRoute "biblioteca_backend/internals/features/users/auth/route"
	userRoute "biblioteca_backend/internals/features/users/user/route"
	helperOSS "biblioteca_backend/internals/helpers/oss"
	middlewares "biblioteca_backend/internals/middlewares"
	authMiddleware "biblioteca_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var startTime time.Time

// SetupRoutes: covers boleh nil (OSS belum dikonfigurasi → upload portada 503).
func SetupRoutes(app *fiber.App, db *gorm.DB, covers helperOSS.CoverStorage) {
	startTime = time.Now()

	BaseRoutes(app, db)

	// 🚦 limiter global untuk seluruh /api (termasuk /api/auth)
	app.Use("/api", middlewares.GlobalRateLimiter())

	// ===================== AUTH =====================
	// Harus didaftarkan sebelum grup /api ber-JWT: handler login/register
	// selesai tanpa Next(), jadi AuthMiddleware grup di bawah tidak ikut jalan.
	log.Println("[INFO] Setting up AuthRoutes...")
	authRoute.AuthRoutes(app, db)

	// ===================== PRIVATE (JWT) =====================
	log.Println("[INFO] Setting up PRIVATE group...")
	api := app.Group("/api", authMiddleware.AuthMiddleware(db))

	// 📚 Katalog
	log.Println("[INFO] Setting up catalog routes...")
	authorRoute.AuthorRoutes(api, db)
	categoryRoute.CategoryRoutes(api, db)
	publisherRoute.PublisherRoutes(api, db)
	bookRoute.BookRoutes(api, db, covers)

	// 🔁 Sirkulasi
	log.Println("[INFO] Setting up circulation routes...")
	loanRoute.LoanRoutes(api, db)
	fineRoute.FineRoutes(api, db)
	reservationRoute.ReservationRoutes(api, db)
	auditRoute.AuditRoutes(api, db)
	reportRoute.ReportRoutes(api, db)

	// 👤 Admin user
	log.Println("[INFO] Setting up UserAdminRoutes...")
	userRoute.UserAdminRoutes(api, db)

	log.Println("[INFO] ✅ Routes ready")
}
