package lifecycle

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/mr-tron/base58"
	"github.com/olekukonko/tablewriter"
)

type StrategyKind string

const (
	StrategyDirectSubmit StrategyKind = "direct"
	StrategyOfflineDump  StrategyKind = "offline"
)

// Strategy decides what happens to an instruction that needs the record authority's signature.
type Strategy interface {
	Kind() StrategyKind
	// Submit handles the instruction of a step. The returned signature is zero when nothing was
	// sent to the cluster.
	Submit(ctx context.Context, step Step, instruction solana.Instruction) (solana.Signature, error)
}

// SelectStrategy returns DirectSubmit when the authority is unset or is the payer, and OfflineDump
// otherwise.
func SelectStrategy(payer solana.PublicKey, authority *solana.PublicKey, executor Executor, out io.Writer) Strategy {
	if authority == nil || authority.IsZero() || authority.Equals(payer) {
		return &DirectSubmit{executor: executor}
	}
	return &OfflineDump{out: out}
}

type Executor interface {
	Execute(ctx context.Context, instruction solana.Instruction) (solana.Signature, *solanarpc.GetTransactionResult, error)
}

// DirectSubmit signs the instruction with the payer, which is also the record authority, and sends
// it to the cluster.
type DirectSubmit struct {
	executor Executor
}

func NewDirectSubmit(executor Executor) *DirectSubmit {
	return &DirectSubmit{executor: executor}
}

func (s *DirectSubmit) Kind() StrategyKind { return StrategyDirectSubmit }

func (s *DirectSubmit) Submit(ctx context.Context, _ Step, instruction solana.Instruction) (solana.Signature, error) {
	sig, _, err := s.executor.Execute(ctx, instruction)
	return sig, err
}

// OfflineDump prints the instruction so that the external authority can sign and submit it with
// its own tooling. It never talks to the cluster.
type OfflineDump struct {
	out io.Writer
}

func NewOfflineDump(out io.Writer) *OfflineDump {
	return &OfflineDump{out: out}
}

func (s *OfflineDump) Kind() StrategyKind { return StrategyOfflineDump }

func (s *OfflineDump) Submit(_ context.Context, step Step, instruction solana.Instruction) (solana.Signature, error) {
	if err := DumpInstruction(s.out, step, instruction); err != nil {
		return solana.Signature{}, fmt.Errorf("failed to dump %s instruction: %w", strings.ToLower(string(step)), err)
	}
	return solana.Signature{}, nil
}

// DumpInstruction writes the program id, the account table, the base58 data and the raw data
// bytes of an instruction.
func DumpInstruction(w io.Writer, step Step, instruction solana.Instruction) error {
	data, err := instruction.Data()
	if err != nil {
		return fmt.Errorf("failed to get instruction data: %w", err)
	}

	fmt.Fprintf(w, "%s instruction for external signing\n", step)
	fmt.Fprintf(w, "Program ID: %s\n", instruction.ProgramID())

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Account", "Signer", "Writable"})
	for i, meta := range instruction.Accounts() {
		table.Append([]string{
			strconv.Itoa(i),
			meta.PublicKey.String(),
			strconv.FormatBool(meta.IsSigner),
			strconv.FormatBool(meta.IsWritable),
		})
	}
	table.Render()

	fmt.Fprintf(w, "Instruction data (base58): %s\n", base58.Encode(data))
	fmt.Fprintln(w, "Instruction bytes raw:")
	raw := make([]string, len(data))
	for i, b := range data {
		raw[i] = strconv.Itoa(int(b))
	}
	_, err = fmt.Fprintln(w, strings.Join(raw, " "))
	return err
}
