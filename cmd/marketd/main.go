package main

import (
	"flag"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"modelmarket/config"
	"modelmarket/core"
	"modelmarket/core/types"
	"modelmarket/native/registry"
	"modelmarket/native/token"
	"modelmarket/observability/logging"
	"modelmarket/rpc"
	"modelmarket/storage"
)

const envPrefix = "MODELMARKET"

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv(envPrefix + "_ENV"))

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup("marketd", env, cfg.LogFile)

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DataDir, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	node := core.NewNode(db, logger)

	params, allocs, err := bootstrapInputs(cfg)
	if err != nil {
		logger.Error("invalid bootstrap configuration", "error", err)
		os.Exit(1)
	}
	window := time.Duration(cfg.ReferralWindowDays) * 24 * time.Hour
	if err := node.Bootstrap(params, window, allocs); err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}

	authToken := strings.TrimSpace(os.Getenv(envPrefix + "_RPC_TOKEN"))
	if authToken == "" {
		authToken = cfg.AdminToken
	}
	server := rpc.NewServer(node, authToken)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving JSON-RPC", "address", cfg.RPCAddress)
		errCh <- server.Start(cfg.RPCAddress)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		logger.Error("rpc server stopped", "error", err)
		os.Exit(1)
	}
}

// bootstrapInputs converts the textual config into the node's typed bootstrap
// parameters. Config validation already guaranteed the addresses parse.
func bootstrapInputs(cfg *config.Config) (*registry.Params, []core.TokenAlloc, error) {
	admin, err := types.ParseAddress(cfg.AdminAddress)
	if err != nil {
		return nil, nil, err
	}
	aggregator, err := types.ParseAddress(cfg.FeeAggregator)
	if err != nil {
		return nil, nil, err
	}
	farm, err := types.ParseAddress(cfg.FarmAddress)
	if err != nil {
		return nil, nil, err
	}
	splitter, err := types.ParseAddress(cfg.FeeSplitter)
	if err != nil {
		return nil, nil, err
	}
	platform, err := types.ParseAddress(cfg.Platform)
	if err != nil {
		return nil, nil, err
	}
	params := &registry.Params{
		Admin:          admin,
		PrimaryToken:   cfg.PrimaryToken,
		SecondaryToken: cfg.SecondaryToken,
		FeeAggregator:  aggregator,
		FarmAddress:    farm,
		FeeSplitter:    splitter,
		Platform:       platform,
	}

	allocs := make([]core.TokenAlloc, 0, len(cfg.Genesis))
	for _, alloc := range cfg.Genesis {
		account, err := types.ParseAddress(alloc.Account)
		if err != nil {
			return nil, nil, err
		}
		kind, err := token.ParseKind(alloc.Token)
		if err != nil {
			return nil, nil, err
		}
		amount, ok := new(big.Int).SetString(strings.TrimSpace(alloc.Amount), 10)
		if !ok {
			return nil, nil, fmt.Errorf("invalid genesis amount %q", alloc.Amount)
		}
		allocs = append(allocs, core.TokenAlloc{Account: account, Kind: kind, Amount: amount})
	}
	return params, allocs, nil
}
