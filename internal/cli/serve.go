package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/monorkin/lab-roster/internal/auth"
	"github.com/monorkin/lab-roster/internal/catalog"
	"github.com/monorkin/lab-roster/internal/database"
	"github.com/monorkin/lab-roster/internal/discovery"
	"github.com/monorkin/lab-roster/internal/store"
	"github.com/monorkin/lab-roster/internal/web"
)

const SHUTDOWN_TIMEOUT = 10 * time.Second

var (
	serveAddr      string
	serveAdvertise bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web interface",
	Long: `Serve the web interface until interrupted.

Sessions are kept in the database unless a Redis URL is configured. With
--advertise the server announces itself over mDNS so "lab-roster discover"
can find it.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		settings.HTTPAddr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(settings)
	if err != nil {
		return err
	}
	defer database.Close(db)

	s := store.New(db)

	var sessions auth.SessionStore = s
	if settings.RedisURL != "" {
		client, err := store.OpenRedis(ctx, settings.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		sessions = store.NewRedisSessionStore(client)
		logger.Info("Keeping sessions in Redis")
	} else {
		pruned, err := s.PruneSessions(ctx, time.Now().UTC())
		if err != nil {
			logger.Warn("Failed to prune sessions", "error", err)
		} else if pruned > 0 {
			logger.Debug("Pruned dead sessions", "count", pruned)
		}
	}

	authService := auth.NewService(s, sessions, auth.BcryptHasher{}, []byte(settings.SecretKey), auth.Options{
		SessionTTL:  settings.SessionTTL,
		RememberFor: settings.RememberFor,
		Logger:      logger,
	})

	server, err := web.NewServer(web.Config{
		SecretKey:     settings.SecretKey,
		SecureCookies: settings.SecureCookies,
		TrustProxy:    settings.TrustProxy,
		Logger:        logger,
		Registry:      prometheus.NewRegistry(),
	}, authService, catalog.New(s, logger))
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              settings.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if serveAdvertise {
		advertise(ctx, settings.HTTPAddr)
	}

	servers := []*http.Server{httpServer}
	if settings.MetricsAddr != "" {
		servers = append(servers, &http.Server{
			Addr:              settings.MetricsAddr,
			Handler:           metricsMux(server),
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func() {
			logger.Info("Listening", "addr", srv.Addr)
			errCh <- srv.ListenAndServe()
		}()
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			shutdown(servers)
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	return shutdown(servers)
}

func metricsMux(server *web.Server) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", server.MetricsHandler())
	return mux
}

func shutdown(servers []*http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
	defer cancel()

	var errs []error
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("graceful shutdown of %s failed: %w", srv.Addr, err))
		}
	}
	return errors.Join(errs...)
}

// advertise logs instead of failing: the web interface works without mDNS.
func advertise(ctx context.Context, addr string) {
	port, err := discovery.PortFromAddr(addr)
	if err != nil {
		logger.Warn("Not advertising", "error", err)
		return
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	if err := discovery.Advertise(ctx, logger, "Lab roster on "+hostname, port); err != nil {
		logger.Warn("Not advertising", "error", err)
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides http_addr)")
	serveCmd.Flags().BoolVar(&serveAdvertise, "advertise", false, "Announce the web interface over mDNS")
	rootCmd.AddCommand(serveCmd)
}
