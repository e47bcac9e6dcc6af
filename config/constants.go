package config

const (
	// Record program deployed on the public clusters.
	RecordProgramID = "recr1L3PCGKLbckBqMNcJhuuyU1zgo8nBhfLVsJNwr5"

	// RPC endpoints.
	MainnetSolanaRPC  = "https://api.mainnet-beta.solana.com"
	TestnetSolanaRPC  = "https://api.testnet.solana.com"
	DevnetSolanaRPC   = "https://api.devnet.solana.com"
	LocalnetSolanaRPC = "http://127.0.0.1:8899"

	// Environment variables overriding the resolved network config.
	EnvVarRPCURL    = "RECORDCTL_RPC_URL"
	EnvVarProgramID = "RECORDCTL_PROGRAM_ID"
)
