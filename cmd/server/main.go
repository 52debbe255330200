package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/versus-league/playoff-mcp-server/internal/httpapi"
	"github.com/versus-league/playoff-mcp-server/internal/mcp"
	"github.com/versus-league/playoff-mcp-server/internal/season"
	"github.com/versus-league/playoff-mcp-server/internal/simulator"
	"golang.org/x/sync/errgroup"
)

type options struct {
	Season    string `long:"season" env:"PLAYOFF_SEASON" description:"Season file (.yaml or .json); searched in configs/ when empty"`
	LogLevel  string `long:"log-level" env:"PLAYOFF_LOG_LEVEL" default:"info" description:"Log level (debug, info, warn, error)"`
	Transport string `long:"transport" default:"stdio" choice:"stdio" choice:"http" description:"Serve MCP over stdio or the JSON API over HTTP"`
	Addr      string `long:"addr" default:":8080" description:"Listen address for the http transport"`
	Workers   int    `long:"workers" default:"0" description:"Scenario enumeration workers, 0 uses one per CPU"`
	RateLimit string `long:"rate-limit" default:"30-M" description:"Per-IP limit on enumeration endpoints of the http transport"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(opts.LogLevel)
	if err != nil {
		logger.WithError(err).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	s, source, err := season.Discover(opts.Season)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load season")
	}
	logger.WithFields(logrus.Fields{
		"season":  s.Name,
		"source":  source,
		"teams":   len(s.Teams),
		"matches": len(s.Matches),
		"slots":   s.Slots,
	}).Info("Season loaded")

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	session := simulator.NewSession(s, workers, logger)

	switch opts.Transport {
	case "http":
		if err := serveHTTP(session, source, opts, logger); err != nil {
			logger.WithError(err).Fatal("HTTP server failed")
		}
	default:
		mcpServer := mcp.NewPlayoffMCPServer(session, source, logger)
		if mcpServer == nil {
			logger.Fatal("Failed to create MCP server")
		}

		logger.Info("Starting Playoff MCP Server...")

		if err := server.ServeStdio(mcpServer); err != nil {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}
}

// serveHTTP runs the JSON API until SIGINT or SIGTERM
func serveHTTP(session *simulator.Session, source string, opts options, logger *logrus.Logger) error {
	api, err := httpapi.NewServer(session, source, opts.RateLimit, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           api,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", opts.Addr).Info("Starting HTTP API...")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down HTTP API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
