package record_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/malbeclabs/recordctl/smartcontract/sdk/go/record"
	"github.com/stretchr/testify/require"
)

func accountInfo(owner solana.PublicKey, lamports uint64, data []byte) *solanarpc.GetAccountInfoResult {
	return &solanarpc.GetAccountInfoResult{
		Value: &solanarpc.Account{
			Lamports: lamports,
			Owner:    owner,
			Data:     solanarpc.DataBytesOrJSONFromBytes(data),
		},
	}
}

func TestSDK_Record_Client_RentExemptLamports(t *testing.T) {
	t.Parallel()

	var gotSize uint64
	mockRPC := &mockRPCClient{
		GetMinimumBalanceForRentExemptionFunc: func(_ context.Context, size uint64, _ solanarpc.CommitmentType) (uint64, error) {
			gotSize = size
			return 42, nil
		},
	}
	signer := solana.NewWallet().PrivateKey
	client := record.New(log, mockRPC, &signer, solana.NewWallet().PublicKey())

	lamports, err := client.RentExemptLamports(t.Context(), &record.All2AllConfig{})
	require.NoError(t, err)
	require.Equal(t, uint64(42), lamports)
	require.Equal(t, uint64(53), gotSize)
}

func TestSDK_Record_Client_CreateAccount(t *testing.T) {
	t.Parallel()

	signer := solana.NewWallet().PrivateKey
	account := solana.NewWallet().PrivateKey
	programID := solana.NewWallet().PublicKey()
	sig := fakeSignature("create")

	var sent []*solana.Transaction
	mockRPC := newSuccessfulMockRPC(sig, &sent)
	client := record.New(log, mockRPC, &signer, programID)

	gotSig, _, err := client.CreateAccount(t.Context(), account, &record.WeightingConfig{})
	require.NoError(t, err)
	require.Equal(t, sig, gotSig)
	require.Len(t, sent, 1)
	require.Len(t, sent[0].Signatures, 2)
	require.Equal(t, solana.SystemProgramID, sent[0].Message.AccountKeys[sent[0].Message.Instructions[0].ProgramIDIndex])
}

func TestSDK_Record_Client_CreateAccount_AlreadyInUse(t *testing.T) {
	t.Parallel()

	signer := solana.NewWallet().PrivateKey
	account := solana.NewWallet().PrivateKey

	mockRPC := newSuccessfulMockRPC(fakeSignature("create"), nil)
	mockRPC.SendTransactionWithOptsFunc = func(_ context.Context, _ *solana.Transaction, _ solanarpc.TransactionOpts) (solana.Signature, error) {
		return solana.Signature{}, &jsonrpc.RPCError{
			Code:    -32002,
			Message: "Transaction simulation failed",
			Data: map[string]any{
				"logs": []any{
					"Program 11111111111111111111111111111111 invoke [1]",
					"Create Account: account Address { address: x, base: None } already in use",
				},
			},
		}
	}
	client := record.New(log, mockRPC, &signer, solana.NewWallet().PublicKey())

	_, _, err := client.CreateAccount(t.Context(), account, &record.All2AllConfig{})
	require.ErrorIs(t, err, record.ErrAccountAlreadyExists)
}

func TestSDK_Record_Client_CreateAccount_RentError(t *testing.T) {
	t.Parallel()

	signer := solana.NewWallet().PrivateKey
	mockRPC := &mockRPCClient{
		GetMinimumBalanceForRentExemptionFunc: func(_ context.Context, _ uint64, _ solanarpc.CommitmentType) (uint64, error) {
			return 0, errors.New("rpc down")
		},
	}
	client := record.New(log, mockRPC, &signer, solana.NewWallet().PublicKey())

	_, _, err := client.CreateAccount(t.Context(), solana.NewWallet().PrivateKey, &record.All2AllConfig{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to get rent")
	require.Equal(t, int32(1), mockRPC.calls.Load())
}

func TestSDK_Record_Client_WriteInitializeClose(t *testing.T) {
	t.Parallel()

	signer := solana.NewWallet().PrivateKey
	programID := solana.NewWallet().PublicKey()
	account := solana.NewWallet().PublicKey()

	var sent []*solana.Transaction
	mockRPC := newSuccessfulMockRPC(fakeSignature("ok"), &sent)
	client := record.New(log, mockRPC, &signer, programID)

	_, _, err := client.Initialize(t.Context(), record.InitializeInstructionConfig{RecordAccount: account, Authority: signer.PublicKey()})
	require.NoError(t, err)

	payload, err := record.Encode(record.NewAll2AllConfig(1, 2))
	require.NoError(t, err)
	_, _, err = client.Write(t.Context(), record.WriteInstructionConfig{RecordAccount: account, Authority: signer.PublicKey(), Data: payload})
	require.NoError(t, err)

	_, _, err = client.Close(t.Context(), record.CloseInstructionConfig{RecordAccount: account, Authority: signer.PublicKey(), Receiver: signer.PublicKey()})
	require.NoError(t, err)

	require.Len(t, sent, 3)
	for i, want := range []byte{0, 1, 3} {
		require.Equal(t, want, []byte(sent[i].Message.Instructions[0].Data)[0])
	}

	_, _, err = client.Write(t.Context(), record.WriteInstructionConfig{RecordAccount: account, Authority: signer.PublicKey()})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to build instruction")
}

func TestSDK_Record_Client_GetRecordAccount(t *testing.T) {
	t.Parallel()

	programID := solana.NewWallet().PublicKey()
	address := solana.NewWallet().PublicKey()
	authority := solana.NewWallet().PublicKey()

	payload, err := record.Encode(record.NewWeightingConfig(record.WeightingModeDynamic, 30000))
	require.NoError(t, err)
	data := append([]byte{1}, authority[:]...)
	data = append(data, payload...)

	mockRPC := &mockRPCClient{
		GetAccountInfoFunc: func(_ context.Context, pk solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
			require.Equal(t, address, pk)
			return accountInfo(programID, 1_183_200, data), nil
		},
	}
	client := record.New(log, mockRPC, nil, programID)

	var cfg record.WeightingConfig
	got, err := client.GetRecordAccount(t.Context(), address, &cfg)
	require.NoError(t, err)
	require.Equal(t, address, got.Address)
	require.Equal(t, uint64(1_183_200), got.Lamports)
	require.Equal(t, [32]byte(authority), got.Metadata.Authority)
	require.Equal(t, record.WeightingModeDynamic, cfg.Mode)
	require.Equal(t, uint64(30000), cfg.TimeConstantMillis)
}

func TestSDK_Record_Client_GetRecordAccount_WrongOwner(t *testing.T) {
	t.Parallel()

	mockRPC := &mockRPCClient{
		GetAccountInfoFunc: func(_ context.Context, _ solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
			return accountInfo(solana.SystemProgramID, 1, make([]byte, 42)), nil
		},
	}
	client := record.New(log, mockRPC, nil, solana.NewWallet().PublicKey())

	_, err := client.GetRecordAccount(t.Context(), solana.NewWallet().PublicKey(), &record.WeightingConfig{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not the record program")
}

func TestSDK_Record_Client_GetRecordAccount_SizeMismatch(t *testing.T) {
	t.Parallel()

	programID := solana.NewWallet().PublicKey()
	mockRPC := &mockRPCClient{
		GetAccountInfoFunc: func(_ context.Context, _ solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
			// Account sized for the weighting record, read as all2all.
			return accountInfo(programID, 1, make([]byte, 42)), nil
		},
	}
	client := record.New(log, mockRPC, nil, programID)

	_, err := client.GetRecordAccount(t.Context(), solana.NewWallet().PublicKey(), &record.All2AllConfig{})
	require.ErrorIs(t, err, record.ErrMalformedRecord)
	require.Equal(t, int32(1), mockRPC.calls.Load(), "decode failures are not retried")
}

func TestSDK_Record_Client_GetRecordAccount_NotFound(t *testing.T) {
	t.Parallel()

	mockRPC := &mockRPCClient{
		GetAccountInfoFunc: func(_ context.Context, _ solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
			return nil, solanarpc.ErrNotFound
		},
	}
	client := record.New(log, mockRPC, nil, solana.NewWallet().PublicKey())

	_, err := client.GetRecordAccount(t.Context(), solana.NewWallet().PublicKey(), &record.All2AllConfig{})
	require.ErrorIs(t, err, record.ErrAccountNotFound)
	require.Equal(t, int32(1), mockRPC.calls.Load(), "not found is not retried")
}

func TestSDK_Record_Client_GetAccount_RetriesTransportErrors(t *testing.T) {
	t.Parallel()

	programID := solana.NewWallet().PublicKey()
	attempts := 0
	mockRPC := &mockRPCClient{
		GetAccountInfoFunc: func(_ context.Context, _ solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
			attempts++
			if attempts < 3 {
				return nil, errors.New("connection reset")
			}
			return accountInfo(programID, 1, make([]byte, 42)), nil
		},
	}
	client := record.New(log, mockRPC, nil, programID, record.WithReadRetry(&backoff.ZeroBackOff{}, 5))

	_, err := client.GetRecordAccount(t.Context(), solana.NewWallet().PublicKey(), &record.WeightingConfig{})
	require.NoError(t, err)
	require.Equal(t, 3, attempts)

	attempts = -10
	_, err = client.GetRecordAccount(t.Context(), solana.NewWallet().PublicKey(), &record.WeightingConfig{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "connection reset")
}

func TestSDK_Record_Client_GetProgramBinary(t *testing.T) {
	t.Parallel()

	programID := solana.MustPublicKeyFromBase58("recr1L3PCGKLbckBqMNcJhuuyU1zgo8nBhfLVsJNwr5")
	expectedPDA, _, err := record.DeriveProgramDataPDA(programID)
	require.NoError(t, err)

	data := make([]byte, 50)
	copy(data[45:], []byte{1, 2, 3, 4, 5})

	mockRPC := &mockRPCClient{
		GetAccountInfoFunc: func(_ context.Context, pk solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
			require.Equal(t, expectedPDA, pk)
			return accountInfo(record.BPFLoaderUpgradeableProgramID, 5_000_000, data), nil
		},
	}
	client := record.New(log, mockRPC, nil, solana.NewWallet().PublicKey())

	got, err := client.GetProgramBinary(t.Context(), programID)
	require.NoError(t, err)
	require.Equal(t, expectedPDA, got.ProgramDataAddress)
	require.Equal(t, record.BPFLoaderUpgradeableProgramID, got.Owner)
	require.Equal(t, uint64(5_000_000), got.Lamports)
	require.Equal(t, []byte{1, 2, 3, 4, 5}, got.Binary)
}

func TestSDK_Record_Client_GetProgramBinary_Truncated(t *testing.T) {
	t.Parallel()

	mockRPC := &mockRPCClient{
		GetAccountInfoFunc: func(_ context.Context, _ solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
			return accountInfo(record.BPFLoaderUpgradeableProgramID, 1, make([]byte, 45)), nil
		},
	}
	client := record.New(log, mockRPC, nil, solana.NewWallet().PublicKey())

	_, err := client.GetProgramBinary(t.Context(), solana.NewWallet().PublicKey())
	require.ErrorIs(t, err, record.ErrTruncatedAccount)
}
