package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/recordctl/controlplane/recordctl/internal/lifecycle"
	"github.com/spf13/cobra"
)

type CloseCmd struct{}

func NewCloseCmd() *CloseCmd {
	return &CloseCmd{}
}

func (c *CloseCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close the record account and reclaim its lamports",
		Long: `Close the record account and reclaim its lamports.

Close is always signed by the payer. If the account is held by an external authority, the program
rejects it and the authority has to close the account itself.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rawReceiver, err := cmd.Flags().GetString("receiver")
			if err != nil {
				return fmt.Errorf("failed to get receiver flag: %w", err)
			}
			var receiver solana.PublicKey
			if rawReceiver != "" {
				receiver, err = solana.PublicKeyFromBase58(rawReceiver)
				if err != nil {
					return fmt.Errorf("%w: invalid receiver %q: %w", lifecycle.ErrConfig, rawReceiver, err)
				}
			}

			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			o, err := rt.orchestrator(false)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return o.Close(ctx, receiver)
		},
	}

	cmd.Flags().String("receiver", "", "Account receiving the reclaimed lamports (default: payer)")

	return cmd
}
