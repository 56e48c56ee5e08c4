package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"palettecore/config"
	"palettecore/core"
	"palettecore/native/registry"
	"palettecore/observability/logging"
	"palettecore/rpc"
	"palettecore/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("PALETTE_ENV"))

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger := logging.Setup("paletted", env, cfg.LogFile)

	platform, err := cfg.Platform()
	if err != nil {
		logger.Error("Invalid platform account", slog.Any("error", err))
		os.Exit(1)
	}
	allocs, err := cfg.Allocs()
	if err != nil {
		logger.Error("Invalid genesis allocation", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	node, err := core.NewNode(db, core.Config{
		FeePercent:      cfg.SwapFeePercent,
		Platform:        platform,
		BaseMetadataURI: cfg.BaseMetadataURI,
		Operators:       registry.NewProxyRegistry(),
		GenesisAlloc:    allocs,
		Logger:          logger,
	})
	if err != nil {
		logger.Error("Failed to initialise node", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("palette node ready",
		"network", cfg.NetworkName,
		"feePercent", cfg.SwapFeePercent,
	)

	server := rpc.NewServer(node, logger)
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("RPC server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
