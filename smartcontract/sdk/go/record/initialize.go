package record

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
)

type InitializeInstructionConfig struct {
	RecordAccount solana.PublicKey
	// Authority is recorded by the program; only it may write to or close the account afterwards.
	Authority solana.PublicKey
}

func (c *InitializeInstructionConfig) Validate() error {
	if c.RecordAccount.IsZero() {
		return fmt.Errorf("record account public key is required")
	}
	if c.Authority.IsZero() {
		return fmt.Errorf("authority public key is required")
	}
	return nil
}

func BuildInitializeInstruction(
	programID solana.PublicKey,
	config InitializeInstructionConfig,
) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	data, err := borsh.Serialize(struct {
		Discriminator uint8
	}{
		Discriminator: uint8(InitializeInstructionIndex),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize args: %w", err)
	}

	// The authority does not sign; the program reads its key from the account list.
	accounts := []*solana.AccountMeta{
		{PublicKey: config.RecordAccount, IsSigner: false, IsWritable: true},
		{PublicKey: config.Authority, IsSigner: false, IsWritable: false},
	}

	return &solana.GenericInstruction{
		ProgID:        programID,
		AccountValues: accounts,
		DataBytes:     data,
	}, nil
}
