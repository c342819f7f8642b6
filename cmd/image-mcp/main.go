package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/edge-filter-mcp/internal/config"
	_ "github.com/ironsheep/edge-filter-mcp/internal/edgedetection" // registers the edge detection plugin
	"github.com/ironsheep/edge-filter-mcp/internal/filter"
	"github.com/ironsheep/edge-filter-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("edge-filter-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	configPath := flag.String("config", "", "YAML configuration file")
	flag.Usage = printHelp
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)
	logger.WithFields(logrus.Fields{
		"version": Version,
		"built":   BuildTime,
		"commit":  GitCommit,
	}).Debug("starting edge-filter-mcp")

	filter.SetLogger(logger)

	registry := filter.NewRegistry()
	plugins, err := filter.LoadPlugins(registry)
	if err != nil {
		logger.WithError(err).Fatal("failed to load plugins")
	}
	defer func() {
		for _, p := range plugins {
			if err := p.Close(); err != nil {
				logger.WithError(err).WithField("plugin", p.Name()).Warn("failed to unload plugin")
			}
		}
	}()

	presets, err := cfg.Presets()
	if err != nil {
		logger.WithError(err).Fatal("failed to load presets")
	}

	logger.WithFields(logrus.Fields{
		"plugins": len(plugins),
		"filters": registry.Count(),
		"presets": len(presets),
		"workers": cfg.Workers,
		"tile":    cfg.TileSize,
	}).Info("filter registry ready")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Options{
		Registry: registry,
		Presets:  presets,
		Tiles:    cfg.Tiles(),
		Logger:   logger,
	})
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.WithError(err).Error("server error")
		os.Exit(1)
	}
}

// initLogger logs to stderr; stdout is the MCP protocol channel.
func initLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(cfg.Level())

	if cfg.Debug() {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}

func printHelp() {
	fmt.Println("edge-filter-mcp - MCP server for image filters")
	fmt.Println()
	fmt.Println("Usage: edge-filter-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config FILE    YAML configuration file")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  IMAGE_MCP_LOG_LEVEL=debug         Log level (default info)")
	fmt.Println("  IMAGE_MCP_PRESETS=presets.yaml    Filter presets file")
	fmt.Println("  IMAGE_MCP_WORKERS=4               Tiles processed at once")
	fmt.Println("  IMAGE_MCP_TILE_SIZE=256           Tile edge length, 0 disables tiling")
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}
