package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/bobmcallan/finance-portal/internal/client"
	"github.com/bobmcallan/finance-portal/internal/common"
	"github.com/bobmcallan/finance-portal/internal/config"
	"github.com/bobmcallan/finance-portal/internal/request"
	"github.com/bobmcallan/finance-portal/internal/symbols"
)

var (
	configFile = flag.String("config", "", "Path to a finance-portal TOML config file")
	assetsURL  = flag.String("assets-url", "", "Asset API base URL (overrides config)")
	financeURL = flag.String("finance-url", "", "Finance API base URL (overrides config)")
	logLevel   = flag.String("log-level", "warn", "Log level for diagnostics on stderr")
)

// env is what every command needs to talk to the backend.
type env struct {
	out      io.Writer
	resolver *symbols.Resolver
	assets   *client.AssetClient
	finance  *client.FinanceClient
}

type opener func() (*env, error)

func loadEnv() (*env, error) {
	var paths []string
	if *configFile != "" {
		paths = append(paths, *configFile)
	}
	cfg, err := config.LoadFromFiles(paths...)
	if err != nil {
		return nil, err
	}
	if *assetsURL != "" {
		cfg.API.AssetsURL = *assetsURL
	}
	if *financeURL != "" {
		cfg.API.FinanceURL = *financeURL
	}

	logger := common.NewLoggerFromConfig(config.LoggingConfig{
		Level:   *logLevel,
		Outputs: []string{"console"},
	})
	return newEnv(os.Stdout, cfg, logger), nil
}

func newEnv(out io.Writer, cfg *config.Config, logger *common.Logger) *env {
	resolver := symbols.NewResolver(logger)
	opts := []client.Option{
		client.WithTimeout(cfg.API.GetTimeout()),
		client.WithLogger(logger),
	}
	return &env{
		out:      out,
		resolver: resolver,
		assets:   client.NewAssetClient(cfg.API.AssetsURL, request.NewBuilder(resolver, cfg.API.Market), opts...),
		finance:  client.NewFinanceClient(cfg.API.FinanceURL, opts...),
	}
}

func (e *env) printf(format string, args ...any) {
	fmt.Fprintf(e.out, format, args...)
}
