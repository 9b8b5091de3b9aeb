package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

type Config struct {
	Addr            string
	RPCEndpoint     string
	LogLevel        string
	LogFormat       string
	NativePoolsFile string

	MinimumLiquidity uint64
	PairFeeBps       uint64
	AmpPrecision     uint64
	// RouterAddress is the zero address when no router is configured.
	RouterAddress common.Address
}

// FromEnv reads the API configuration. ETH_RPC_URL is required.
func FromEnv() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if cfg.RPCEndpoint == "" {
		return nil, ErrMissingRPCEndpoint
	}
	return cfg, nil
}

// OfflineFromEnv reads the configuration of tools that only use the native
// pools file, for which ETH_RPC_URL is optional.
func OfflineFromEnv() (*Config, error) {
	return load()
}

func load() (*Config, error) {
	cfg := &Config{
		Addr:            envOr("ADDR", ":1337"),
		RPCEndpoint:     os.Getenv("ETH_RPC_URL"),
		LogLevel:        envOr("LOG_LEVEL", "info"),
		LogFormat:       strings.ToLower(envOr("LOG_FORMAT", "text")),
		NativePoolsFile: os.Getenv("NATIVE_POOLS_FILE"),
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLogFormat, cfg.LogFormat)
	}

	var err error
	if cfg.MinimumLiquidity, err = envUint("MINIMUM_LIQUIDITY", 1_000); err != nil {
		return nil, err
	}
	if cfg.PairFeeBps, err = envUint("PAIR_FEE_BPS", 30); err != nil {
		return nil, err
	}
	if cfg.PairFeeBps >= 10_000 {
		return nil, fmt.Errorf("%w: PAIR_FEE_BPS=%d", ErrInvalidNumber, cfg.PairFeeBps)
	}
	if cfg.AmpPrecision, err = envUint("AMP_PRECISION", 100); err != nil {
		return nil, err
	}
	if cfg.AmpPrecision == 0 {
		return nil, fmt.Errorf("%w: AMP_PRECISION=0", ErrInvalidNumber)
	}

	if router := os.Getenv("ROUTER_ADDRESS"); router != "" {
		if !common.IsHexAddress(router) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRouterAddress, router)
		}
		cfg.RouterAddress = common.HexToAddress(router)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envUint(key string, fallback uint64) (uint64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidNumber, key, v)
	}
	return n, nil
}
