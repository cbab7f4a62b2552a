// Command finance-mcp serves the finance-portal MCP tools over stdio for
// desktop MCP clients, or over streamable HTTP with -http.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bobmcallan/finance-portal/internal/app"
	"github.com/bobmcallan/finance-portal/internal/common"
	"github.com/bobmcallan/finance-portal/internal/config"
	"github.com/bobmcallan/finance-portal/internal/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	configFile := flag.String("config", "", "Path to a finance-portal TOML config file")
	dataPath := flag.String("data", "", "Badger path (overrides config; must differ from a running finance-portal)")
	httpAddr := flag.String("http", "", "Serve streamable HTTP on this address instead of stdio")
	flag.Parse()

	var paths []string
	if *configFile != "" {
		paths = append(paths, *configFile)
	}
	cfg, err := config.LoadFromFiles(paths...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *dataPath != "" {
		cfg.Storage.Badger.Path = *dataPath
	}
	// Tools are served directly; no /mcp handler on an HTTP mux.
	cfg.MCP.Enabled = false

	// stdout carries JSON-RPC; the console writer logs to stderr.
	logger := common.NewLoggerFromConfig(cfg.Logging)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize application")
		os.Exit(1)
	}
	defer application.Close()

	mcpServer, tools := mcp.NewServer(application.Store, application.Resolver)
	logger.Info().Int("tools", len(tools)).Str("version", config.Version).Msg("MCP server ready")

	if *httpAddr != "" {
		httpServer := server.NewStreamableHTTPServer(mcpServer, server.WithStateLess(true))
		logger.Info().Str("address", *httpAddr).Msg("starting MCP streamable HTTP")
		if err := httpServer.Start(*httpAddr); err != nil {
			logger.Error().Err(err).Msg("http server error")
			application.Close()
			os.Exit(1)
		}
		return
	}

	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Error().Err(err).Msg("stdio server error")
		application.Close()
		os.Exit(1)
	}
}
