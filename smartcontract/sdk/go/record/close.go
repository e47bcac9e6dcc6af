package record

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
)

type CloseInstructionConfig struct {
	RecordAccount solana.PublicKey
	Authority     solana.PublicKey
	// Receiver gets the reclaimed lamports.
	Receiver solana.PublicKey
}

func (c *CloseInstructionConfig) Validate() error {
	if c.RecordAccount.IsZero() {
		return fmt.Errorf("record account public key is required")
	}
	if c.Authority.IsZero() {
		return fmt.Errorf("authority public key is required")
	}
	if c.Receiver.IsZero() {
		return fmt.Errorf("receiver public key is required")
	}
	return nil
}

func BuildCloseInstruction(
	programID solana.PublicKey,
	config CloseInstructionConfig,
) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	data, err := borsh.Serialize(struct {
		Discriminator uint8
	}{
		Discriminator: uint8(CloseAccountInstructionIndex),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize args: %w", err)
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: config.RecordAccount, IsSigner: false, IsWritable: true},
		{PublicKey: config.Authority, IsSigner: true, IsWritable: false},
		{PublicKey: config.Receiver, IsSigner: false, IsWritable: true},
	}

	return &solana.GenericInstruction{
		ProgID:        programID,
		AccountValues: accounts,
		DataBytes:     data,
	}, nil
}
