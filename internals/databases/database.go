package database

import (
	"fmt"
	"log"
	"time"

	"biblioteca_backend/internals/configs"
	authorModel "biblioteca_backend/internals/features/catalog/authors/model"
	bookModel "biblioteca_backend/internals/features/catalog/books/model"
	categoryModel "biblioteca_backend/internals/features/catalog/categories/model"
	publisherModel "biblioteca_backend/internals/features/catalog/publishers/model"
	auditModel "biblioteca_backend/internals/features/circulation/audit/model"
	fineModel "biblioteca_backend/internals/features/circulation/fines/model"
	loanModel "biblioteca_backend/internals/features/circulation/loans/model"
	reservationModel "biblioteca_backend/internals/features/circulation/reservations/model"
	authModel "biblioteca_backend/internals/features/users/auth/model"
	userModel "biblioteca_backend/internals/features/users/user/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	log.Println("🔌 Koneksi ke PostgreSQL...")

	// statement_timeout selaras dengan timeout per-request (5s)
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=biblioteca&options=-c statement_timeout=5000",
		configs.GetEnv("DB_USER"),
		configs.GetEnv("DB_PASSWORD"),
		configs.GetEnv("DB_HOST", "localhost"),
		configs.GetEnv("DB_PORT", "5432"),
		configs.GetEnv("DB_NAME", "biblioteca"),
		configs.GetEnv("DB_SSLMODE", "disable"),
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // 👍 aman untuk PgBouncer
	}), &gorm.Config{
		Logger: configs.NewGormLogger(),
	})
	if err != nil {
		log.Fatalf("❌ Gagal konek DB: %v", err)
	}
	DB = db
	log.Println("✅ DB connected.")
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(configs.GetEnvInt("DB_MAX_OPEN_CONNS", 20))
	sqlDB.SetMaxIdleConns(configs.GetEnvInt("DB_MAX_IDLE_CONNS", 10))
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func WarmUpQueries() {
	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := ping(); err != nil {
			log.Printf("warm-up ping err: %v", err)
			return
		}
		// query katalog paling sering dipakai
		var n int64
		if err := DB.Model(&bookModel.BookModel{}).Count(&n).Error; err != nil {
			log.Printf("warm-up count err: %v", err)
		}
	}()
}

func ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// =====================================================
// MIGRATION
// =====================================================

// Models: urutan penting (induk dulu sebelum tabel yang punya FK).
func Models() []any {
	return []any{
		&userModel.UserModel{},
		&authModel.TokenBlacklist{},
		&authorModel.AuthorModel{},
		&categoryModel.CategoryModel{},
		&publisherModel.PublisherModel{},
		&bookModel.BookModel{},
		&bookModel.BookAuthorModel{},
		&loanModel.LoanModel{},
		&loanModel.LoanDetailModel{},
		&fineModel.FineModel{},
		&reservationModel.ReservationModel{},
		&auditModel.AuditLogModel{},
	}
}

// constraintSQL: FK yang tidak bisa diekspresikan lewat tag tanpa relasi struct.
// Dibungkus DO-block supaya idempotent.
var constraintSQL = []struct{ name, table, ddl string }{
	{"fk_book_authors_book", "book_authors",
		`FOREIGN KEY (book_author_book_id) REFERENCES books(book_id) ON DELETE CASCADE`},
	{"fk_book_authors_author", "book_authors",
		`FOREIGN KEY (book_author_author_id) REFERENCES authors(author_id) ON DELETE CASCADE`},
	{"fk_books_category", "books",
		`FOREIGN KEY (book_category_id) REFERENCES categories(category_id)`},
	{"fk_books_publisher", "books",
		`FOREIGN KEY (book_publisher_id) REFERENCES publishers(publisher_id)`},
	{"fk_loans_user", "loans",
		`FOREIGN KEY (loan_user_id) REFERENCES users(user_id)`},
	{"fk_loan_details_book", "loan_details",
		`FOREIGN KEY (loan_detail_book_id) REFERENCES books(book_id)`},
	{"fk_fines_user", "fines",
		`FOREIGN KEY (fine_user_id) REFERENCES users(user_id)`},
	{"fk_fines_loan_detail", "fines",
		`FOREIGN KEY (fine_loan_detail_id) REFERENCES loan_details(loan_detail_id) ON DELETE SET NULL`},
	{"fk_reservations_user", "reservations",
		`FOREIGN KEY (reservation_user_id) REFERENCES users(user_id)`},
	{"fk_reservations_book", "reservations",
		`FOREIGN KEY (reservation_book_id) REFERENCES books(book_id)`},
}

var indexSQL = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_users_name_lower ON users (LOWER(user_name))`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_users_email_lower ON users (LOWER(user_email))`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_categories_name_lower ON categories (LOWER(category_name)) WHERE category_deleted_at IS NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_books_slug_lower ON books (LOWER(book_slug)) WHERE book_deleted_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS idx_loans_open ON loans (loan_due_date) WHERE loan_returned_at IS NULL`,
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		log.Printf("⚠️ pgcrypto: %v", err)
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	for _, c := range constraintSQL {
		stmt := fmt.Sprintf(`DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
    ALTER TABLE %s ADD CONSTRAINT %s %s;
  END IF;
END $$;`, c.name, c.table, c.name, c.ddl)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("constraint %s: %w", c.name, err)
		}
	}
	for _, stmt := range indexSQL {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("index: %w", err)
		}
	}
	log.Println("✅ Migrasi selesai")
	return nil
}
