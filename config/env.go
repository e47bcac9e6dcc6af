package config

import (
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
)

const (
	EnvMainnetBeta = "mainnet-beta"
	EnvMainnet     = "mainnet"
	EnvTestnet     = "testnet"
	EnvDevnet      = "devnet"
	EnvLocalnet    = "localnet"
)

var (
	ErrInvalidEnvironment = fmt.Errorf("invalid environment")
)

type NetworkConfig struct {
	Moniker         string
	RPCURL          string
	RecordProgramID solana.PublicKey
}

func NetworkConfigForEnv(env string) (*NetworkConfig, error) {
	programID, err := solana.PublicKeyFromBase58(RecordProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse record program ID: %w", err)
	}

	var config *NetworkConfig
	switch env {
	case EnvMainnetBeta, EnvMainnet:
		config = &NetworkConfig{
			Moniker:         EnvMainnetBeta,
			RPCURL:          MainnetSolanaRPC,
			RecordProgramID: programID,
		}
	case EnvTestnet:
		config = &NetworkConfig{
			Moniker:         EnvTestnet,
			RPCURL:          TestnetSolanaRPC,
			RecordProgramID: programID,
		}
	case EnvDevnet:
		config = &NetworkConfig{
			Moniker:         EnvDevnet,
			RPCURL:          DevnetSolanaRPC,
			RecordProgramID: programID,
		}
	case EnvLocalnet:
		config = &NetworkConfig{
			Moniker:         EnvLocalnet,
			RPCURL:          LocalnetSolanaRPC,
			RecordProgramID: programID,
		}
	default:
		return nil, fmt.Errorf("%w %q, must be one of: %s, %s, %s, %s", ErrInvalidEnvironment, env, EnvMainnetBeta, EnvTestnet, EnvDevnet, EnvLocalnet)
	}

	if rpcURL := os.Getenv(EnvVarRPCURL); rpcURL != "" {
		config.RPCURL = rpcURL
	}
	if raw := os.Getenv(EnvVarProgramID); raw != "" {
		programID, err := solana.PublicKeyFromBase58(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", EnvVarProgramID, err)
		}
		config.RecordProgramID = programID
	}

	return config, nil
}
