package route

import (
	"biblioteca_backend/internals/features/circulation/loans/controller"
	authMiddleware "biblioteca_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// LoanRoutes: dipasang di bawah group /api yang sudah lewat AuthMiddleware.
func LoanRoutes(api fiber.Router, db *gorm.DB) {
	loanCtrl := controller.NewLoanController(db)
	adminOnly := authMiddleware.AdminOnly("préstamos")

	g := api.Group("/prestamos")
	g.Get("/", loanCtrl.List)                           // 📄 admin: semua, lector: milik sendiri
	g.Get("/vencidos", adminOnly, loanCtrl.ListOverdue) // ⏰ belum kembali & lewat jatuh tempo
	g.Get("/:id", loanCtrl.Get)                         // 🔍 pemilik atau admin
	g.Post("/", adminOnly, loanCtrl.Create)             // ➕
	g.Put("/:id/devolver", adminOnly, loanCtrl.Return)  // ↩️ pengembalian + denda
	g.Delete("/:id", adminOnly, loanCtrl.Delete)        // 🗑️
}
