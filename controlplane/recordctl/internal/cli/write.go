package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

type WriteCmd struct{}

func NewWriteCmd() *WriteCmd {
	return &WriteCmd{}
}

func (c *WriteCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write",
		Short: "Write the record into the record account",
		Long: `Write the record into the record account.

When --authority-pubkey names a key other than the payer, the write instruction is printed for
signing by that authority and nothing is sent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := recordFromFlags(cmd.Flags(), true)
			if err != nil {
				return err
			}
			offset, err := cmd.Flags().GetUint32("offset")
			if err != nil {
				return fmt.Errorf("failed to get offset flag: %w", err)
			}
			showDiff, err := cmd.Flags().GetBool("diff")
			if err != nil {
				return fmt.Errorf("failed to get diff flag: %w", err)
			}

			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			o, err := rt.orchestrator(showDiff)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return o.Write(ctx, r, offset)
		},
	}

	addRecordFlags(cmd.Flags())
	cmd.Flags().Uint32("offset", 0, "Byte offset within the record region to write at")
	cmd.Flags().Bool("diff", false, "Print the difference between the on-chain record and the new record")

	return cmd
}
