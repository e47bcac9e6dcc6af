package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/malbeclabs/recordctl/config"
	"github.com/malbeclabs/recordctl/controlplane/recordctl/internal/lifecycle"
	"github.com/malbeclabs/recordctl/smartcontract/sdk/go/record"
	"github.com/spf13/cobra"
)

// runtime is the resolved configuration shared by every subcommand. Flags set on the command line
// take precedence over the profile, which takes precedence over the environment defaults.
type runtime struct {
	log        *slog.Logger
	out        io.Writer
	errOut     io.Writer
	network    *config.NetworkConfig
	commitment solanarpc.CommitmentType
	rpc        *solanarpc.Client

	payerKeypairPath   string
	accountKeypairPath string
	authority          *solana.PublicKey
}

func newRuntime(cmd *cobra.Command) (*runtime, error) {
	flags := cmd.Root().PersistentFlags()

	verbose, err := flags.GetBool("verbose")
	if err != nil {
		return nil, fmt.Errorf("failed to get verbose flag: %w", err)
	}
	log := newLogger(cmd.ErrOrStderr(), verbose)

	profile := &config.Profile{}
	if path, _ := flags.GetString("config"); path != "" {
		profile, err = config.LoadProfile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", lifecycle.ErrConfig, err)
		}
		log.Debug("Loaded profile", "path", path)
	}

	env := resolve(cmd, "env", profile.Env)
	network, err := config.NetworkConfigForEnv(env)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", lifecycle.ErrConfig, err)
	}
	if rpcURL := resolve(cmd, "rpc-url", profile.RPCURL); rpcURL != "" {
		network.RPCURL = rpcURL
	}
	if programID := resolve(cmd, "program-id", profile.ProgramID); programID != "" {
		network.RecordProgramID, err = solana.PublicKeyFromBase58(programID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid program id %q: %w", lifecycle.ErrConfig, programID, err)
		}
	}

	var commitment solanarpc.CommitmentType
	switch c := resolve(cmd, "commitment", ""); c {
	case string(solanarpc.CommitmentConfirmed), string(solanarpc.CommitmentFinalized):
		commitment = solanarpc.CommitmentType(c)
	default:
		return nil, fmt.Errorf("%w: invalid commitment %q, must be one of: confirmed, finalized", lifecycle.ErrConfig, c)
	}

	var authority *solana.PublicKey
	if raw := resolve(cmd, "authority-pubkey", profile.AuthorityPubkey); raw != "" {
		pk, err := solana.PublicKeyFromBase58(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid authority pubkey %q: %w", lifecycle.ErrConfig, raw, err)
		}
		authority = &pk
	}

	log.Debug("Resolved network config", "env", network.Moniker, "rpcURL", network.RPCURL, "programID", network.RecordProgramID)

	return &runtime{
		log:                log,
		out:                cmd.OutOrStdout(),
		errOut:             cmd.ErrOrStderr(),
		network:            network,
		commitment:         commitment,
		rpc:                solanarpc.New(network.RPCURL),
		payerKeypairPath:   resolve(cmd, "payer-keypair", profile.PayerKeypair),
		accountKeypairPath: resolve(cmd, "account-keypair", profile.AccountKeypair),
		authority:          authority,
	}, nil
}

// resolve returns the flag value when it was set explicitly, then the profile value, then the
// flag default.
func resolve(cmd *cobra.Command, name, profileValue string) string {
	flag := cmd.Flag(name)
	if flag == nil {
		return profileValue
	}
	if !flag.Changed && profileValue != "" {
		return profileValue
	}
	return flag.Value.String()
}

func loadKeypair(path, name string) (solana.PrivateKey, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load %s keypair from %s: %w", lifecycle.ErrConfig, name, path, err)
	}
	return key, nil
}

// client builds a record client signing with the payer keypair.
func (r *runtime) client(payer *solana.PrivateKey) *record.Client {
	return record.New(r.log, r.rpc, payer, r.network.RecordProgramID,
		record.WithExecutorOptions(record.WithCommitment(r.commitment)),
	)
}

// orchestrator loads the payer and record account keypairs and builds the lifecycle orchestrator.
// It fails before any network activity when a keypair cannot be read.
func (r *runtime) orchestrator(showDiff bool) (*lifecycle.Orchestrator, error) {
	payer, err := loadKeypair(r.payerKeypairPath, "payer")
	if err != nil {
		return nil, err
	}
	account, err := loadKeypair(r.accountKeypairPath, "account")
	if err != nil {
		return nil, err
	}
	return lifecycle.New(lifecycle.Config{
		Logger:    r.log,
		Client:    r.client(&payer),
		Payer:     payer.PublicKey(),
		Account:   account,
		Authority: r.authority,
		Out:       r.out,
		ErrOut:    r.errOut,
		ShowDiff:  showDiff,
	})
}
