package record

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
)

type SetAuthorityInstructionConfig struct {
	RecordAccount solana.PublicKey
	Authority     solana.PublicKey
	NewAuthority  solana.PublicKey
}

func (c *SetAuthorityInstructionConfig) Validate() error {
	if c.RecordAccount.IsZero() {
		return fmt.Errorf("record account public key is required")
	}
	if c.Authority.IsZero() {
		return fmt.Errorf("authority public key is required")
	}
	if c.NewAuthority.IsZero() {
		return fmt.Errorf("new authority public key is required")
	}
	return nil
}

func BuildSetAuthorityInstruction(
	programID solana.PublicKey,
	config SetAuthorityInstructionConfig,
) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	data, err := borsh.Serialize(struct {
		Discriminator uint8
	}{
		Discriminator: uint8(SetAuthorityInstructionIndex),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize args: %w", err)
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: config.RecordAccount, IsSigner: false, IsWritable: true},
		{PublicKey: config.Authority, IsSigner: true, IsWritable: false},
		{PublicKey: config.NewAuthority, IsSigner: false, IsWritable: false},
	}

	return &solana.GenericInstruction{
		ProgID:        programID,
		AccountValues: accounts,
		DataBytes:     data,
	}, nil
}
