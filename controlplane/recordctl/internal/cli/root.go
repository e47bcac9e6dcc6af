package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/malbeclabs/recordctl/config"
	"github.com/malbeclabs/recordctl/controlplane/recordctl/internal/lifecycle"
	"github.com/malbeclabs/recordctl/controlplane/recordctl/internal/metrics"
	"github.com/spf13/cobra"
)

type ExitCode int

const (
	exitCodeSuccess = 0
	exitCodeError   = 1
)

const (
	defaultPayerKeypair   = "id.json"
	defaultAccountKeypair = "all2all.json"
)

type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

func Run(info BuildInfo, args []string) ExitCode {
	metrics.BuildInfo.WithLabelValues(info.Version, info.Commit, info.Date).Set(1)

	rootCmd := NewRootCmd(info, os.Stdout, os.Stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	if err != nil {
		if errors.Is(err, lifecycle.ErrConfig) {
			metrics.Errors.WithLabelValues(metrics.ErrorTypeConfig).Inc()
		}
		// Step failures have already been reported by the orchestrator.
		var subErr *lifecycle.SubmissionError
		if !errors.As(err, &subErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}

	if path, _ := rootCmd.PersistentFlags().GetString("metrics-textfile"); path != "" {
		if werr := metrics.WriteTextfile(path); werr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", werr)
		}
	}

	if err != nil {
		return exitCodeError
	}
	return exitCodeSuccess
}

func NewRootCmd(info BuildInfo, stdout, stderr io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "recordctl",
		Short:         "Provision and update configuration records held by the record program.",
		Version:       fmt.Sprintf("%s, commit: %s, date: %s", info.Version, info.Commit, info.Date),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := cmd.Help()
			if err != nil {
				return fmt.Errorf("failed to show help: %w", err)
			}
			return nil
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "set debug logging level")
	flags.StringP("env", "e", config.EnvLocalnet, "The network environment (localnet, devnet, testnet, mainnet-beta)")
	flags.String("rpc-url", "", "RPC URL to send transactions through, overrides the environment default")
	flags.String("program-id", "", "Record program ID, overrides the environment default")
	flags.String("commitment", "confirmed", "Commitment a transaction must reach before a step completes (confirmed, finalized)")
	flags.String("config", "", "Path to a YAML profile with default settings")
	flags.String("metrics-textfile", "", "Write prometheus metrics to this file when the command exits")
	flags.String("payer-keypair", defaultPayerKeypair, "Payer keypair that funds and signs transactions")
	flags.String("account-keypair", defaultAccountKeypair, "Keypair of the record account")
	flags.String("authority-pubkey", "", "Set this pubkey as authority of the account, e.g. a multisig; instructions it must sign are printed instead of sent")

	rootCmd.AddCommand(
		NewInitCmd().Command(),
		NewWriteCmd().Command(),
		NewCloseCmd().Command(),
		NewSetAuthorityCmd().Command(),
		NewShowCmd().Command(),
		NewProgramDataCmd().Command(),
	)

	return rootCmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}
