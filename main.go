// NASA ADS MCP Server - A Model Context Protocol server for the NASA
// Astrophysics Data System. Provides tools for searching the literature,
// reading citation metrics, exporting BibTeX and managing ADS libraries.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/olgasafonova/nasa-ads-mcp-server/internal/ads"
	apierrors "github.com/olgasafonova/nasa-ads-mcp-server/internal/errors"
	"github.com/olgasafonova/nasa-ads-mcp-server/tools"
	"github.com/olgasafonova/nasa-ads-mcp-server/tracing"
)

// recoverPanic logs a panic that escaped a goroutine instead of crashing
func recoverPanic(logger *slog.Logger, operation string) {
	if r := recover(); r != nil {
		logger.Error("Panic recovered",
			"operation", operation,
			"panic", r,
			"stack", string(debug.Stack()))
	}
}

const (
	ServerName    = "nasa-ads-mcp-server"
	ServerVersion = "0.3.0"
)

const serverInstructions = `NASA ADS MCP Server provides tools for the NASA Astrophysics Data System.

Available tools:
- search_papers: Search the literature by query, author, year or bibcode
- get_paper_details: Full record and abstract of one paper
- get_author_papers: Papers by one author
- get_paper_metrics: Citation metrics for a set of bibcodes
- get_author_metrics: h-index and citation metrics for an author
- export_bibtex: BibTeX for a set of bibcodes
- list_libraries: The user's ADS libraries
- get_library_papers: Papers in one library
- create_library: Create a library
- add_to_library: Add papers to a library

Configure via environment variables (or a .env file):
- ADS_API_TOKEN: ADS API token (required)
- ADS_API_URL: API root (default https://api.adsabs.harvard.edu/v1)
- ADS_TIMEOUT: Per-request timeout (default 30s)
- ADS_RATE_LIMIT: Client-side pacing in requests per second (default 5)`

func main() {
	httpAddr := flag.String("http", "", "Serve streamable HTTP on this address (e.g. :8080) instead of stdio")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error); overrides ADS_LOG_LEVEL")
	envFile := flag.String("env-file", "", "Load environment from this file instead of .env")
	check := flag.Bool("check", false, "Run one test search against ADS and exit")
	flag.Parse()

	// Configure logging to stderr (stdout is used for MCP protocol)
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(logger, level, *httpAddr, *logLevel, *envFile, *check); err != nil {
		var cfgErr *apierrors.ConfigurationError
		if errors.As(err, &cfgErr) {
			logger.Error("Invalid configuration", "key", cfgErr.Key, "error", cfgErr.Message)
		} else {
			logger.Error("Server error", "error", err)
		}
		os.Exit(1)
	}
}

func run(logger *slog.Logger, level *slog.LevelVar, httpAddr, logLevel, envFile string, check bool) error {
	var envFiles []string
	if envFile != "" {
		envFiles = append(envFiles, envFile)
	}
	config, err := ads.LoadConfig(envFiles...)
	if err != nil {
		return err
	}
	if logLevel != "" {
		config.LogLevel = logLevel
	}
	level.Set(ads.ParseLogLevel(config.LogLevel))
	logger.Debug("Configuration loaded", "config", config)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	traceConfig := tracing.DefaultConfig()
	traceConfig.ServiceVersion = ServerVersion
	shutdownTracing, err := tracing.Setup(ctx, traceConfig)
	if err != nil {
		return fmt.Errorf("tracing setup: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("Tracing shutdown failed", "error", err)
		}
	}()

	client := ads.NewClient(config.Token, config.ClientOptions(logger)...)
	if check {
		return checkConnection(ctx, client, os.Stdout)
	}

	handlers, err := tools.NewHandlerRegistry(client, logger)
	if err != nil {
		return err
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Logger:       logger,
		Instructions: serverInstructions,
	})
	handlers.RegisterAll(server)

	logger.Info("Starting NASA ADS MCP Server",
		"name", ServerName,
		"version", ServerVersion,
		"api_url", config.BaseURL,
		"transport", transportName(httpAddr),
	)

	if httpAddr == "" {
		if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
	return serveHTTP(ctx, server, logger, httpAddr, LoadHTTPConfig())
}

// checkConnection runs a three-row search so a token can be verified
// without an MCP host.
func checkConnection(ctx context.Context, client *ads.Client, w io.Writer) error {
	text, err := client.SearchPapersMCP(ctx, ads.SearchPapersArgs{Query: "stellar populations", Rows: 3})
	if err != nil {
		return fmt.Errorf("connection check: %w", err)
	}
	_, err = fmt.Fprintf(w, "ADS search succeeded:\n%s\n", text)
	return err
}

func transportName(httpAddr string) string {
	if httpAddr == "" {
		return "stdio"
	}
	return "http"
}
