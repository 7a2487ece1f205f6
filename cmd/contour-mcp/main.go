// Package main is the stdio MCP entry point of the contouring recommendation
// engine. It takes no arguments; configuration comes from config.yaml and
// CONTOUR_* environment variables.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/contourai-mcp-server/internal/config"
	"github.com/contourai-mcp-server/internal/logging"
	"github.com/contourai-mcp-server/internal/mcp"
	"github.com/contourai-mcp-server/internal/service"
)

func main() {
	fallback := logrus.New()
	fallback.SetOutput(os.Stderr)

	cm, err := config.NewManager(os.Getenv("CONTOUR_CONFIG"))
	if err != nil {
		fallback.WithError(err).Fatal("Failed to load configuration")
	}
	if err := cm.Validate(); err != nil {
		fallback.WithError(err).Fatal("Invalid configuration")
	}

	logger, closeLog, err := logging.New(*cm.GetLoggingConfig())
	if err != nil {
		fallback.WithError(err).Fatal("Failed to create logger")
	}
	defer closeLog()

	svc, err := service.NewContourService(logger, nil, *cm.GetEngineConfig())
	if err != nil {
		logger.WithError(err).Fatal("Failed to create recommendation service")
	}

	server, err := mcp.NewServer(*cm.GetMCPConfig(), svc, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create MCP server")
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("MCP server failed")
	}

	logger.Info("ContourAI MCP server stopped")
}
