package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"gutoautopecas/internal/admin"
	"gutoautopecas/internal/cache"
	"gutoautopecas/internal/config"
	"gutoautopecas/internal/content"
	"gutoautopecas/internal/database"
	"gutoautopecas/internal/gate"
	"gutoautopecas/internal/gateway"
	"gutoautopecas/internal/handlers"
	"gutoautopecas/internal/middleware"
	"gutoautopecas/internal/render"
	"gutoautopecas/internal/router"
	"gutoautopecas/internal/session"
	"gutoautopecas/internal/storage"
)

const (
	// shutdownTimeout bounds the graceful drain of requests and writes.
	shutdownTimeout = 30 * time.Second

	// formRateLimit is how many form posts or login attempts one client
	// may make per formRateWindow.
	formRateLimit  = 10
	formRateWindow = time.Minute

	surfaceSweepInterval = 5 * time.Minute
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			setupLogger(cfg, rootOpts.Verbose)
			slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	// Connect to PostgreSQL and run pending migrations.
	db, err := database.Connect(ctx, cfg.DSN(), cfg.StartupAttempts)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}
	if cfg.IsDev() {
		if err := database.SeedHeroSlides(ctx, db, []string{content.Defaults().Hero.BgImage}); err != nil {
			return err
		}
	}

	gw := gateway.NewRetrying(gateway.NewSQLGateway(db), cfg.RetryAttempts, cfg.RetryBaseDelay)

	site, snap, err := openSite(cfg, gw)
	if err != nil {
		return err
	}
	if snap != nil {
		defer snap.Close()
	}
	// A partial tree is still served; failed sections keep their defaults.
	if err := site.FetchAll(ctx); err != nil {
		slog.Warn("initial content fetch incomplete", "error", err)
	}

	// Valkey holds sessions and the rendered page cache.
	valkeyClient, err := cache.ConnectValkey(ctx, net.JoinHostPort(cfg.ValkeyHost, cfg.ValkeyPort), cfg.ValkeyPassword, cfg.StartupAttempts)
	if err != nil {
		return err
	}
	defer valkeyClient.Close()

	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)
	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)

	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		return fmt.Errorf("initialize renderer: %w", err)
	}

	checker, err := gate.New(cfg.AdminPasswordHash)
	if err != nil {
		return fmt.Errorf("ADMIN_PASSWORD_HASH: %w", err)
	}

	wsOpts := []admin.Option{
		admin.WithPollInterval(cfg.LeadsPollInterval),
		admin.WithIdleTimeout(session.DefaultIdleTTL),
	}
	if cfg.HasStorage() {
		bucket, err := storage.New(storage.Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return fmt.Errorf("initialize S3 storage: %w", err)
		}
		wsOpts = append(wsOpts, admin.WithUploader(bucket))
		slog.Info("s3 storage configured", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, uploaded images are kept inline")
	}
	workspace := admin.NewWorkspace(site, gw, wsOpts...)
	defer workspace.Close()

	public := handlers.NewPublic(renderer, site, gw, pageCache, cfg.HeroRotateInterval)
	public.LoadSlides(ctx)

	limiter := middleware.NewRateLimiter(formRateLimit, formRateWindow)
	defer limiter.Stop()

	r := router.New(sessionStore, limiter,
		handlers.NewAdmin(renderer, workspace, site),
		handlers.NewAuth(renderer, sessionStore, checker, workspace),
		public,
		secureCookies,
	)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		pageCache.Watch(gctx, site)
		return nil
	})
	g.Go(func() error {
		workspace.Run(gctx, surfaceSweepInterval)
		return nil
	})
	if snap != nil {
		g.Go(func() error {
			snap.Follow(gctx, site)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
		if err := site.Drain(shutdownCtx); err != nil {
			slog.Warn("pending content writes abandoned", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped gracefully")
	return nil
}
