package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/recordctl/controlplane/recordctl/internal/lifecycle"
	"github.com/malbeclabs/recordctl/controlplane/recordctl/internal/metrics"
	"github.com/spf13/cobra"
)

type ProgramDataCmd struct{}

func NewProgramDataCmd() *ProgramDataCmd {
	return &ProgramDataCmd{}
}

func (c *ProgramDataCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "program-data",
		Short: "Fetch the deployed binary of an upgradeable program",
		RunE: func(cmd *cobra.Command, args []string) error {
			rawProgram, err := cmd.Flags().GetString("program")
			if err != nil {
				return fmt.Errorf("failed to get program flag: %w", err)
			}
			outPath, err := cmd.Flags().GetString("out")
			if err != nil {
				return fmt.Errorf("failed to get out flag: %w", err)
			}

			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}

			programID := rt.network.RecordProgramID
			if rawProgram != "" {
				programID, err = solana.PublicKeyFromBase58(rawProgram)
				if err != nil {
					return fmt.Errorf("%w: invalid program %q: %w", lifecycle.ErrConfig, rawProgram, err)
				}
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			program, err := rt.client(nil).GetProgramBinary(ctx, programID)
			if err != nil {
				metrics.Errors.WithLabelValues(metrics.ErrorTypeProgramData).Inc()
				return fmt.Errorf("failed to fetch program data of %s: %w", programID, err)
			}

			fmt.Fprintf(rt.out, "ProgramData address: %s\n", program.ProgramDataAddress)
			fmt.Fprintf(rt.out, "Account has %d lamports\n", program.Lamports)
			fmt.Fprintf(rt.out, "Owner: %s\n", program.Owner)

			if err := os.WriteFile(outPath, program.Binary, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}
			fmt.Fprintf(rt.out, "Saved ELF binary to %s (%d bytes)\n", outPath, len(program.Binary))
			return nil
		},
	}

	cmd.Flags().String("program", "", "Program ID to fetch (default: the record program)")
	cmd.Flags().String("out", "program.so", "Path to write the program binary to")

	return cmd
}
