package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/utils"
	"github.com/robfig/cron/v3"

	"biblioteca_backend/internals/configs"
	database "biblioteca_backend/internals/databases"
	reservationScheduler "biblioteca_backend/internals/features/circulation/reservations/scheduler"
	scheduler "biblioteca_backend/internals/features/users/auth/scheduler"
	helperOSS "biblioteca_backend/internals/helpers/oss"
	middlewares "biblioteca_backend/internals/middlewares"
	routes "biblioteca_backend/internals/route"
	"biblioteca_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
		BodyLimit:               6 * 1024 * 1024, // portada maks 5MB + overhead multipart
	})

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault})) // gzip
	app.Use(etag.New())                                                  // 304 caching

	// 🔎 Request-ID + timeout per request (selaras statement_timeout DB)
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)

		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	})

	middlewares.SetupMiddlewares(app)

	// 🔌 DB connect + pool + warm-up
	database.ConnectDB()
	database.TunePool()
	database.WarmUpQueries()

	if configs.GetEnvBool("DB_AUTO_MIGRATE", true) {
		if err := database.AutoMigrate(database.DB); err != nil {
			log.Fatalf("❌ %v", err)
		}
	}
	seeds.RunAllSeeds(database.DB)

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// ⏱ scheduler setelah DB siap
	scheduler.StartBlacklistCleanupScheduler(rootCtx, database.DB)

	jobs := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := reservationScheduler.RegisterExpirySweep(jobs, database.DB); err != nil {
		log.Fatalf("❌ sweep reservasi: %v", err)
	}

	// 🖼️ OSS opsional: tanpa ENV, upload portada → 503
	var covers helperOSS.CoverStorage
	if svc, err := helperOSS.NewOSSServiceFromEnv(configs.GetEnv("ALI_OSS_PREFIX", "biblioteca")); err != nil {
		log.Printf("⚠️ OSS nonaktif: %v", err)
	} else {
		covers = svc
		if _, err := helperOSS.RegisterTrashReaper(jobs, svc); err != nil {
			log.Printf("⚠️ trash reaper: %v", err)
		}
	}
	jobs.Start()

	// ✅ Routes
	routes.SetupRoutes(app, database.DB, covers)

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown: stop job → server → pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down...")

	stop()
	<-jobs.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
