package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/paysuite/internal/sandbox"
	"github.com/frahmantamala/paysuite/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	sandboxPort      int
	sandboxPublicURL string
)

var sandboxCmd = &cobra.Command{
	Use:   "sandbox",
	Short: "Run a local PaySuite API sandbox",
	Long: `Serve POST /api/v1/payments and GET /api/v1/payments/{id} from memory.
Point the client at it with PAYSUITE_BASE_URL=http://localhost:<port>/api/v1.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startSandbox(cmd)
	},
}

func startSandbox(cmd *cobra.Command) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Sandbox.Port = sandboxPort
	}
	if err := cfg.Sandbox.Validate(); err != nil {
		return fmt.Errorf("sandbox config: %w", err)
	}

	lg := logger.L()
	srv := sandbox.NewServer(sandbox.Config{
		Token:     cfg.Sandbox.Token,
		PublicURL: sandboxPublicURL,
	}, lg)

	addr := fmt.Sprintf(":%d", cfg.Sandbox.Port)
	lg.Info("Starting PaySuite sandbox", "address", addr, "api_prefix", sandbox.APIPrefix)

	server := &http.Server{
		Addr:         addr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Sandbox.ReadTimeout,
		WriteTimeout: cfg.Sandbox.WriteTimeout,
		IdleTimeout:  cfg.Sandbox.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		lg.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			lg.Error("Sandbox shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("sandbox failed to start: %w", err)
		}
	}

	lg.Info("Sandbox stopped")
	return nil
}

func init() {
	sandboxCmd.Flags().IntVar(&sandboxPort, "port", 8080, "Port to listen on")
	sandboxCmd.Flags().StringVar(&sandboxPublicURL, "public-url", "", "Scheme and host used in checkout URLs (defaults to the request host)")
}
