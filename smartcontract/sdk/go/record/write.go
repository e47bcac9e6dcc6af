package record

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
)

type WriteInstructionConfig struct {
	RecordAccount solana.PublicKey
	Authority     solana.PublicKey
	// Offset into the record region, after the program metadata.
	Offset uint32
	Data   []byte
}

func (c *WriteInstructionConfig) Validate() error {
	if c.RecordAccount.IsZero() {
		return fmt.Errorf("record account public key is required")
	}
	if c.Authority.IsZero() {
		return fmt.Errorf("authority public key is required")
	}
	if len(c.Data) == 0 {
		return fmt.Errorf("data is required")
	}
	return nil
}

// BuildWriteInstruction builds an instruction writing Data at Offset within the record region.
//
// Offset+len(Data) is not checked against the record size. Writing a sub-field at a non-zero offset
// is a supported use, and the record program rejects writes that run past the end of the account.
func BuildWriteInstruction(
	programID solana.PublicKey,
	config WriteInstructionConfig,
) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	data, err := borsh.Serialize(struct {
		Discriminator uint8
		Offset        uint64
		Data          []byte
	}{
		Discriminator: uint8(WriteInstructionIndex),
		Offset:        uint64(config.Offset),
		Data:          config.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize args: %w", err)
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: config.RecordAccount, IsSigner: false, IsWritable: true},
		{PublicKey: config.Authority, IsSigner: true, IsWritable: false},
	}

	return &solana.GenericInstruction{
		ProgID:        programID,
		AccountValues: accounts,
		DataBytes:     data,
	}, nil
}
