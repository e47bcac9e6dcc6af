package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"gopkg.in/yaml.v3"
)

// Profile holds operator defaults loaded from a YAML file. Command line flags take precedence over
// every field.
//
//	env: testnet
//	rpc_url: https://api.testnet.solana.com
//	program_id: recr1L3PCGKLbckBqMNcJhuuyU1zgo8nBhfLVsJNwr5
//	payer_keypair: ~/.config/solana/id.json
//	account_keypair: all2all.json
//	authority_pubkey: 7h6k...
type Profile struct {
	Env             string `yaml:"env"`
	RPCURL          string `yaml:"rpc_url"`
	ProgramID       string `yaml:"program_id"`
	PayerKeypair    string `yaml:"payer_keypair"`
	AccountKeypair  string `yaml:"account_keypair"`
	AuthorityPubkey string `yaml:"authority_pubkey"`
}

func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", path, err)
	}
	return &p, nil
}

func (p *Profile) Validate() error {
	var errs []error
	if p.Env != "" {
		if _, err := NetworkConfigForEnv(p.Env); errors.Is(err, ErrInvalidEnvironment) {
			errs = append(errs, err)
		}
	}
	if p.ProgramID != "" {
		if _, err := solana.PublicKeyFromBase58(p.ProgramID); err != nil {
			errs = append(errs, fmt.Errorf("invalid program_id: %w", err))
		}
	}
	if p.AuthorityPubkey != "" {
		if _, err := solana.PublicKeyFromBase58(p.AuthorityPubkey); err != nil {
			errs = append(errs, fmt.Errorf("invalid authority_pubkey: %w", err))
		}
	}
	return errors.Join(errs...)
}
