package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/recordctl/controlplane/recordctl/internal/lifecycle"
	"github.com/malbeclabs/recordctl/controlplane/recordctl/internal/metrics"
	"github.com/malbeclabs/recordctl/smartcontract/sdk/go/record"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

type ShowCmd struct{}

func NewShowCmd() *ShowCmd {
	return &ShowCmd{}
}

func (c *ShowCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Read and decode the record account",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := recordKindFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			rawAccount, err := cmd.Flags().GetString("account")
			if err != nil {
				return fmt.Errorf("failed to get account flag: %w", err)
			}

			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}

			var address solana.PublicKey
			if rawAccount != "" {
				address, err = solana.PublicKeyFromBase58(rawAccount)
				if err != nil {
					return fmt.Errorf("%w: invalid account %q: %w", lifecycle.ErrConfig, rawAccount, err)
				}
			} else {
				key, err := loadKeypair(rt.accountKeypairPath, "account")
				if err != nil {
					return err
				}
				address = key.PublicKey()
			}

			r, err := record.NewRecord(kind)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			account, err := rt.client(nil).GetRecordAccount(ctx, address, r)
			if err != nil {
				metrics.Errors.WithLabelValues(metrics.ErrorTypeReadAccount).Inc()
				return fmt.Errorf("failed to read record account %s: %w", address, err)
			}

			renderRecordAccount(rt.out, account)
			return nil
		},
	}

	addRecordKindFlag(cmd.Flags())
	cmd.Flags().String("account", "", "Address of the record account (default: public key of --account-keypair)")

	return cmd
}

func renderRecordAccount(w io.Writer, account *record.RecordAccount) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Field", "Value"})
	table.Append([]string{"address", account.Address.String()})
	table.Append([]string{"owner", account.Owner.String()})
	table.Append([]string{"lamports", strconv.FormatUint(account.Lamports, 10)})
	table.Append([]string{"version", strconv.Itoa(int(account.Metadata.Version))})
	table.Append([]string{"authority", solana.PublicKeyFromBytes(account.Metadata.Authority[:]).String()})
	table.Append([]string{"kind", string(account.Record.Kind())})
	table.AppendBulk(recordRows(account.Record))
	table.Render()
}

func recordRows(r record.Record) [][]string {
	switch r := r.(type) {
	case *record.All2AllConfig:
		return [][]string{
			{"test_interval_slots", strconv.Itoa(int(r.TestIntervalSlots))},
			{"packet_size", strconv.Itoa(int(r.PacketSize))},
		}
	case *record.PacketTestConfig:
		return [][]string{
			{"test_interval_slots", strconv.Itoa(int(r.TestIntervalSlots))},
			{"verify", strconv.FormatBool(r.Verify)},
			{"packet_extra_size", strconv.Itoa(int(r.PacketExtraSize))},
		}
	case *record.WeightingConfig:
		return [][]string{
			{"mode", r.Mode.String()},
			{"time_constant_millis", strconv.FormatUint(r.TimeConstantMillis, 10)},
		}
	default:
		return nil
	}
}
