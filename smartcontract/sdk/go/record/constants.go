package record

import "github.com/gagliardetto/solana-go"

// RecordInstructionType represents the type of record program instruction
type RecordInstructionType uint8

const (
	InitializeInstructionIndex   RecordInstructionType = 0
	WriteInstructionIndex        RecordInstructionType = 1
	SetAuthorityInstructionIndex RecordInstructionType = 2
	CloseAccountInstructionIndex RecordInstructionType = 3
)

func (t RecordInstructionType) String() string {
	switch t {
	case InitializeInstructionIndex:
		return "initialize"
	case WriteInstructionIndex:
		return "write"
	case SetAuthorityInstructionIndex:
		return "set-authority"
	case CloseAccountInstructionIndex:
		return "close"
	default:
		return "unknown"
	}
}

const (
	// RecordMetaDataSize is the size of the header the record program keeps in front of the
	// record bytes: a version byte followed by the 32 byte authority.
	RecordMetaDataSize = 1 + 32

	// ProgramDataHeaderSize is the fixed prefix of a ProgramData account before the program binary.
	ProgramDataHeaderSize = 8 + 1 + 32 + 4
)

// BPFLoaderUpgradeableProgramID is the well-known program ID for the BPF Loader Upgradeable program.
var BPFLoaderUpgradeableProgramID = solana.MustPublicKeyFromBase58("BPFLoaderUpgradeab1e11111111111111111111111")
