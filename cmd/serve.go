package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"invoiceflow/accounting"
	"invoiceflow/archive"
	"invoiceflow/billing"
	"invoiceflow/cache"
	"invoiceflow/config"
	"invoiceflow/controllers"
	"invoiceflow/database"
	"invoiceflow/documents"
	"invoiceflow/logger"
	"invoiceflow/middlewares"
	"invoiceflow/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Connects to Postgres, migrates the public schema and serves the API.

Redis (scheme cache) and the S3 document archive are optional and are
enabled by REDIS_ADDR and ARCHIVE_BUCKET respectively.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	if err := database.Connect(cfg); err != nil {
		return err
	}
	if err := database.MigratePublic(); err != nil {
		return fmt.Errorf("migrate public schema: %w", err)
	}

	middlewares.ConfigureAuth(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpirationHours)*time.Hour)

	schemes, err := cache.Connect(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.SchemeTTL())
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Scheme cache unavailable, continuing without it")
	}
	defer schemes.Close()

	store, err := archive.New(cmd.Context(), archive.Options{
		Endpoint:  cfg.Archive.Endpoint,
		Region:    cfg.Archive.Region,
		Bucket:    cfg.Archive.Bucket,
		AccessKey: cfg.Archive.AccessKey,
		SecretKey: cfg.Archive.SecretKey,
	})
	if err != nil {
		return err
	}

	rate, err := cfg.DiscountRate()
	if err != nil {
		return err
	}
	controllers.Setup(controllers.Deps{
		DiscountRate:     rate,
		DefaultTermsDays: cfg.Billing.DefaultTermsDays,
		Schemes:          schemes,
		Archive:          store,
		Renderer:         documents.NewRenderer(billing.NewFormatter(cfg.Billing.CurrencySymbol)),
		Grouper:          documents.NewGrouper(cfg.Billing.CategoryOrder),
		Syncer:           accounting.NewSyncer(nil),
	})

	app := newApp(cfg)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		log.Info().
			Str("addr", addr).
			Bool("scheme_cache", schemes.Enabled()).
			Bool("archive", store != nil).
			Msg("API server starting")
		errCh <- app.Listen(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	return app.ShutdownWithContext(ctx)
}

// newApp builds the Fiber app with the global error handler, body limit,
// CORS, rate limiting and routes.
func newApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middlewares.ErrorHandler,
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
	})

	app.Use(middlewares.AccessLog())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowCredentials: false, // bearer tokens, not cookies
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
		ExposeHeaders:    "Idempotent-Replayed, X-Archive-Key",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.Server.RateLimitMax,
		Expiration: cfg.RateLimitWindow(),
	}))

	routes.Register(app, cfg.Server.MetricsEnabled)
	return app
}
