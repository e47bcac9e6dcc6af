package record_test

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/recordctl/smartcontract/sdk/go/record"
	"github.com/stretchr/testify/require"
)

func TestSDK_Record_DeriveProgramDataPDA(t *testing.T) {
	t.Parallel()

	programID := solana.MustPublicKeyFromBase58("recr1L3PCGKLbckBqMNcJhuuyU1zgo8nBhfLVsJNwr5")

	pda1, bump1, err := record.DeriveProgramDataPDA(programID)
	require.NoError(t, err)
	require.False(t, pda1.IsZero(), "PDA should not be zero")

	// Same inputs produce same PDA (determinism)
	pda2, bump2, err := record.DeriveProgramDataPDA(programID)
	require.NoError(t, err)
	require.Equal(t, pda1, pda2, "PDA should be deterministic")
	require.Equal(t, bump1, bump2, "Bump should be deterministic")

	expected, expectedBump, err := solana.FindProgramAddress([][]byte{programID[:]}, record.BPFLoaderUpgradeableProgramID)
	require.NoError(t, err)
	require.Equal(t, expected, pda1)
	require.Equal(t, expectedBump, bump1)
}

func TestSDK_Record_DeriveProgramDataPDA_DifferentPrograms(t *testing.T) {
	t.Parallel()

	pda1, _, err := record.DeriveProgramDataPDA(solana.NewWallet().PublicKey())
	require.NoError(t, err)

	pda2, _, err := record.DeriveProgramDataPDA(solana.NewWallet().PublicKey())
	require.NoError(t, err)

	require.NotEqual(t, pda1, pda2, "PDAs should be different for different program IDs")
}
