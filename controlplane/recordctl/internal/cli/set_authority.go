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

type SetAuthorityCmd struct{}

func NewSetAuthorityCmd() *SetAuthorityCmd {
	return &SetAuthorityCmd{}
}

func (c *SetAuthorityCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-authority",
		Short: "Hand the record account over to a new authority",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := cmd.Flags().GetString("new-authority")
			if err != nil {
				return fmt.Errorf("failed to get new-authority flag: %w", err)
			}
			newAuthority, err := solana.PublicKeyFromBase58(raw)
			if err != nil {
				return fmt.Errorf("%w: invalid new authority %q: %w", lifecycle.ErrConfig, raw, err)
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

			return o.SetAuthority(ctx, newAuthority)
		},
	}

	cmd.Flags().String("new-authority", "", "Public key of the new record authority")
	_ = cmd.MarkFlagRequired("new-authority")

	return cmd
}
