package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

type InitCmd struct{}

func NewInitCmd() *InitCmd {
	return &InitCmd{}
}

func (c *InitCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the record account and initialize it with the authority",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := recordFromFlags(cmd.Flags(), false)
			if err != nil {
				return err
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

			if err := o.Init(ctx, r); err != nil {
				return err
			}
			rt.log.Info("Record account initialized", "account", o.AccountAddress(), "kind", r.Kind())
			fmt.Fprintf(rt.out, "Record account: %s\n", o.AccountAddress())
			return nil
		},
	}

	addRecordFlags(cmd.Flags())

	return cmd
}
