package record

import (
	"github.com/gagliardetto/solana-go"
)

// DeriveProgramDataPDA derives the program data PDA for a BPF Upgradeable program.
// Seeds: [programID] with BPF Loader Upgradeable as the program.
func DeriveProgramDataPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{programID[:]},
		BPFLoaderUpgradeableProgramID,
	)
}
