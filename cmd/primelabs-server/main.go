package main

import (
	"context"
	crypto_rand "crypto/rand"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"
	_ "time/tzdata"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/primelabs/primelabs/internal/config"
	"github.com/primelabs/primelabs/internal/domain/account"
	"github.com/primelabs/primelabs/internal/domain/catalog"
	"github.com/primelabs/primelabs/internal/domain/commission"
	"github.com/primelabs/primelabs/internal/domain/doctor"
	"github.com/primelabs/primelabs/internal/domain/expense"
	"github.com/primelabs/primelabs/internal/domain/record"
	"github.com/primelabs/primelabs/internal/domain/report"
	"github.com/primelabs/primelabs/internal/platform/auth"
	"github.com/primelabs/primelabs/internal/platform/cache"
	"github.com/primelabs/primelabs/internal/platform/db"
	"github.com/primelabs/primelabs/internal/platform/docstore"
	"github.com/primelabs/primelabs/internal/platform/mailer"
	"github.com/primelabs/primelabs/internal/platform/middleware"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "primelabs-server",
		Short:        "PrimeLabs lab desk API server",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(catalogCmd())
	return rootCmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations (postgres driver only)",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			dir, _ := cmd.Flags().GetString("dir")

			ctx := context.Background()
			pool, err := migrationPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Running migrations on schema: %s\n", schema)
			count, err := db.NewMigrator(pool, dir).Up(ctx, schema)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(out, "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			dir, _ := cmd.Flags().GetString("dir")

			ctx := context.Background()
			pool, err := migrationPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx, schema)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Migration status for schema: %s\n", schema)
			fmt.Fprintf(out, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Fprintf(out, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}

	// The document store queries the unqualified documents table, so the
	// default schema is the one on every search_path.
	for _, c := range []*cobra.Command{upCmd, statusCmd} {
		c.Flags().String("schema", "public", "Target schema for migrations")
		c.Flags().String("dir", "./migrations", "Path to migrations directory")
		cmd.AddCommand(c)
	}
	return cmd
}

func migrationPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for migrations")
	}
	return db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
}

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the test price list",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print every catalog test with its price and commission category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printCatalog(cmd.OutOrStdout(), catalog.Default())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "categorize <name> <price>",
		Short: "Show which commission category a test falls into",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil || price < 0 {
				return fmt.Errorf("invalid price %q", args[1])
			}
			fmt.Fprintln(cmd.OutOrStdout(), commission.Categorize(args[0], price))
			return nil
		},
	})
	return cmd
}

func printCatalog(w io.Writer, c *catalog.Catalog) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TEST\tPRICE\tCATEGORY")
	for _, t := range c.Tests() {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", t.Name, t.Price, commission.Categorize(t.Name, t.Price))
	}
	return tw.Flush()
}

// newLogger writes JSON to stdout (console format in development) and, when
// LOG_FILE is set, to a rotated file as well.
func newLogger(cfg *config.Config, stdout io.Writer) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var out io.Writer = stdout
	if cfg.IsDev() {
		out = zerolog.ConsoleWriter{Out: stdout}
	}

	var closer io.Closer
	if cfg.LogFile != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		}
		out = zerolog.MultiLevelWriter(out, file)
		closer = file
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), closer, nil
}

type storeHandle struct {
	store  docstore.Store
	pinger db.Pinger
	pool   *pgxpool.Pool
	close  func()
}

func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*storeHandle, error) {
	policy := docstore.RetryPolicy{
		MaxAttempts: cfg.RetryMaxAttempts,
		Backoff:     docstore.FixedBackoff(cfg.RetryBackoff),
	}

	switch cfg.DocstoreDriver {
	case "postgres":
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		logger.Info().Msg("connected to postgres")
		return &storeHandle{
			store:  docstore.WithRetry(docstore.NewPostgresStore(pool), policy, logger),
			pinger: pool,
			pool:   pool,
			close:  pool.Close,
		}, nil

	case "mongo":
		client, store, err := docstore.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("database", cfg.MongoDatabase).Msg("connected to mongo")
		return &storeHandle{
			store: docstore.WithRetry(store, policy, logger),
			pinger: db.PingFunc(func(ctx context.Context) error {
				return client.Ping(ctx, nil)
			}),
			close: func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = client.Disconnect(ctx)
			},
		}, nil
	}

	logger.Warn().Msg("using in-memory document store, data is lost on restart")
	return &storeHandle{
		store:  docstore.NewMemoryStore(),
		pinger: db.PingFunc(func(context.Context) error { return nil }),
		close:  func() {},
	}, nil
}

func openCache(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (cache.Store, func(), error) {
	if cfg.RedisURL != "" {
		rs, err := cache.ConnectRedis(ctx, cfg.RedisURL, "primelabs:")
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Msg("connected to redis")
		return rs, func() { _ = rs.Close() }, nil
	}
	ms := cache.NewMemoryStore()
	cleanupCtx, cancel := context.WithCancel(ctx)
	ms.StartCleanup(cleanupCtx, time.Minute)
	return ms, cancel, nil
}

// resolveSigningKey returns AUTH_SIGNING_KEY or a random 32-byte key. The
// second return value is true when a random key was generated.
func resolveSigningKey(value string) ([]byte, bool, error) {
	if value != "" {
		return []byte(value), false, nil
	}
	key := make([]byte, 32)
	if _, err := crypto_rand.Read(key); err != nil {
		return nil, false, fmt.Errorf("failed to generate random signing key: %w", err)
	}
	return key, true, nil
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, logFile, err := newLogger(cfg, os.Stdout)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	sh, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.DocstoreDriver).Msg("failed to open document store")
		return err
	}
	defer sh.close()

	cacheStore, closeCache, err := openCache(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to redis")
		return err
	}
	defer closeCache()

	signingKey, randomKey, err := resolveSigningKey(cfg.AuthSigningKey)
	if err != nil {
		return err
	}
	if randomKey {
		logger.Warn().Msg("AUTH_SIGNING_KEY not set, sessions will not survive a restart")
	}

	mail := mailer.New(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}, logger)

	creds := auth.NewLocalProvider(sh.store, mail, auth.LocalConfig{
		SigningKey: signingKey,
		TokenTTL:   cfg.AuthTokenTTL,
		ResetTTL:   cfg.AuthResetTTL,
		PublicURL:  cfg.PublicURL,
	}, logger)

	owners, err := auth.NewOwnerList(cfg.OwnerEmails...)
	if err != nil {
		return err
	}

	// Domain services
	cat := catalog.Default()
	accountSvc := account.NewService(account.NewStoreRepo(sh.store), creds, owners, logger)
	doctorSvc := doctor.NewService(doctor.NewStoreRepo(sh.store), cacheStore, cfg.CacheTTL, logger)
	recordSvc := record.NewService(record.NewStoreRepo(sh.store, cfg.RecordsCollection()), record.Config{
		Collection: cfg.RecordsCollection(),
		Catalog:    cat,
		Calculator: commission.NewCalculator(logger),
		Doctors:    doctorSvc,
		Location:   loc,
	}, logger)
	expenseSvc := expense.NewService(expense.NewStoreRepo(sh.store, cfg.ExpensesCollection()),
		cfg.ExpensesCollection(), loc, logger)
	reportSvc := report.NewService(recordSvc, expenseSvc, cacheStore, cfg.CacheTTL, loc, logger, doctorSvc)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "X-Session-Cleared"},
	}))
	e.Use(middleware.BodyLimit(1 << 20))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(cfg.DocstoreDriver, sh.pinger, sh.pool))

	rl := middleware.DefaultRateLimitConfig()
	if cfg.RateLimitRPS > 0 {
		rl = middleware.RateLimitConfig{RequestsPerSecond: cfg.RateLimitRPS, BurstSize: cfg.RateLimitBurst}
	}

	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(rl))
	apiV1.Use(auth.SessionMiddleware(accountSvc, logger))

	account.NewHandler(accountSvc).RegisterRoutes(apiV1)
	catalog.NewHandler(cat).RegisterRoutes(apiV1)
	doctor.NewHandler(doctorSvc).RegisterRoutes(apiV1)
	record.NewHandler(recordSvc).RegisterRoutes(apiV1)
	expense.NewHandler(expenseSvc).RegisterRoutes(apiV1)
	report.NewHandler(reportSvc).RegisterRoutes(apiV1)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().
			Str("addr", addr).
			Str("driver", cfg.DocstoreDriver).
			Str("records", cfg.RecordsCollection()).
			Str("timezone", loc.String()).
			Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
