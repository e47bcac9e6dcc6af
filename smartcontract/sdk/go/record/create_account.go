package record

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

type CreateAccountInstructionConfig struct {
	Payer         solana.PublicKey
	RecordAccount solana.PublicKey
	Lamports      uint64
	Space         uint64
}

func (c *CreateAccountInstructionConfig) Validate() error {
	if c.Payer.IsZero() {
		return fmt.Errorf("payer public key is required")
	}
	if c.RecordAccount.IsZero() {
		return fmt.Errorf("record account public key is required")
	}
	if c.Space <= RecordMetaDataSize {
		return fmt.Errorf("space %d must exceed record metadata size %d", c.Space, RecordMetaDataSize)
	}
	return nil
}

// BuildCreateAccountInstruction builds the system program instruction that funds and allocates the
// record account and assigns it to the record program. Both the payer and the record account sign.
func BuildCreateAccountInstruction(
	programID solana.PublicKey,
	config CreateAccountInstructionConfig,
) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	return system.NewCreateAccountInstruction(
		config.Lamports,
		config.Space,
		programID,
		config.Payer,
		config.RecordAccount,
	).Build(), nil
}
