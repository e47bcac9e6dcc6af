package lifecycle_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/malbeclabs/recordctl/controlplane/recordctl/internal/lifecycle"
	"github.com/malbeclabs/recordctl/smartcontract/sdk/go/record"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"
)

func TestRecordctl_Lifecycle_SelectStrategy(t *testing.T) {
	t.Parallel()

	payer := solana.NewWallet().PublicKey()
	external := solana.NewWallet().PublicKey()
	zero := solana.PublicKey{}

	tests := []struct {
		name      string
		authority *solana.PublicKey
		want      lifecycle.StrategyKind
	}{
		{name: "unset", authority: nil, want: lifecycle.StrategyDirectSubmit},
		{name: "zero", authority: &zero, want: lifecycle.StrategyDirectSubmit},
		{name: "payer", authority: &payer, want: lifecycle.StrategyDirectSubmit},
		{name: "external", authority: &external, want: lifecycle.StrategyOfflineDump},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := lifecycle.SelectStrategy(payer, tt.authority, &mockRecordClient{}, &bytes.Buffer{})
			require.Equal(t, tt.want, s.Kind())
		})
	}
}

func TestRecordctl_Lifecycle_DirectSubmit(t *testing.T) {
	t.Parallel()

	sig := fakeSignature("direct")
	var got solana.Instruction
	client := &mockRecordClient{
		ExecuteFunc: func(_ context.Context, ix solana.Instruction) (solana.Signature, *solanarpc.GetTransactionResult, error) {
			got = ix
			return sig, nil, nil
		},
	}
	ix := &solana.GenericInstruction{ProgID: solana.NewWallet().PublicKey(), DataBytes: []byte{1}}

	s := lifecycle.NewDirectSubmit(client)
	gotSig, err := s.Submit(t.Context(), lifecycle.StepWrite, ix)
	require.NoError(t, err)
	require.Equal(t, sig, gotSig)
	require.Same(t, ix, got)
}

func TestRecordctl_Lifecycle_DumpInstruction(t *testing.T) {
	t.Parallel()

	programID := solana.NewWallet().PublicKey()
	account := solana.NewWallet().PublicKey()
	authority := solana.NewWallet().PublicKey()

	ix, err := record.BuildWriteInstruction(programID, record.WriteInstructionConfig{
		RecordAccount: account,
		Authority:     authority,
		Data:          []byte{7, 8},
	})
	require.NoError(t, err)
	data, err := ix.Data()
	require.NoError(t, err)

	var out bytes.Buffer
	sig, err := lifecycle.NewOfflineDump(&out).Submit(t.Context(), lifecycle.StepWrite, ix)
	require.NoError(t, err)
	require.Equal(t, solana.Signature{}, sig)

	dump := out.String()
	require.Contains(t, dump, "Write instruction for external signing")
	require.Contains(t, dump, "Program ID: "+programID.String())
	require.Contains(t, dump, account.String())
	require.Contains(t, dump, authority.String())
	require.Contains(t, dump, "Instruction data (base58): "+base58.Encode(data))
	require.Contains(t, dump, "Instruction bytes raw:\n1 0 0 0 0 0 0 0 0 2 0 0 0 7 8\n")
}
