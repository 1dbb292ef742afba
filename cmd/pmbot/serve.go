package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/pmbot/internal/config"
	"github.com/rpggio/pmbot/internal/mcp"
	"github.com/spf13/cobra"
)

func (c *cli) serveCmd() *cobra.Command {
	var (
		transport string
		host      string
		port      int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose report tools over MCP",
		Long: `Run an MCP server with the generate_report, send_reminders and
get_cached_report tools, over stdio (default) or streamable HTTP.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg
			if transport != "" {
				cfg.Transport.Mode = transport
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if port != 0 {
				cfg.Server.Port = port
			}

			a, err := wire(cmd.Context(), cfg, c.logger, wireOptions{stdout: c.stderr})
			if err != nil {
				return err
			}
			defer a.Close()

			server := mcp.NewServer(mcp.Config{
				Service:       a.service,
				Render:        a.render,
				AuthToken:     cfg.Server.AuthToken,
				TransportMode: cfg.Transport.Mode,
				Version:       version,
				Logger:        c.logger,
			})

			if cfg.Transport.Mode == config.TransportHTTP {
				return runHTTPMode(cmd.Context(), c.logger, server, cfg.Server)
			}
			return runStdioMode(cmd.Context(), c.logger, server)
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "", "Transport: stdio or http (default from config)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP listen host")
	cmd.Flags().IntVar(&port, "port", 0, "HTTP listen port")
	return cmd
}

// runStdioMode blocks until stdin closes or ctx is cancelled.
func runStdioMode(ctx context.Context, logger *slog.Logger, server *sdkmcp.Server) error {
	logger.Info("starting stdio transport")
	if err := server.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, server *sdkmcp.Server, cfg config.ServerConfig) error {
	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:           newHTTPHandler(server),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", httpServer.Addr, "auth", cfg.AuthToken != "")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	return waitForShutdown(logger, httpServer)
}

func newHTTPHandler(server *sdkmcp.Server) http.Handler {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return server },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: 30 * time.Minute},
	)

	router := http.NewServeMux()
	router.Handle("/mcp", mcpHandler)
	router.Handle("/mcp/", mcpHandler)
	router.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return router
}

func waitForShutdown(logger *slog.Logger, server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
