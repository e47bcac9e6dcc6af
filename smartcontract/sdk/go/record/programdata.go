package record

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ErrTruncatedAccount is returned when a ProgramData account is too short to hold a program binary.
var ErrTruncatedAccount = errors.New("account data too small to contain program")

// ProgramBinary is a deployed program binary read from its ProgramData account.
type ProgramBinary struct {
	ProgramID          solana.PublicKey
	ProgramDataAddress solana.PublicKey
	Lamports           uint64
	Owner              solana.PublicKey
	Binary             []byte
}

// ExtractProgramBinary strips the ProgramData header and returns the program binary verbatim.
//
// The header is treated as a fixed ProgramDataHeaderSize bytes. The upgrade authority slot is
// counted as present whatever the option tag says, because the loader reserves it either way.
func ExtractProgramBinary(data []byte) ([]byte, error) {
	if len(data) <= ProgramDataHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, header is %d", ErrTruncatedAccount, len(data), ProgramDataHeaderSize)
	}
	return data[ProgramDataHeaderSize:], nil
}
