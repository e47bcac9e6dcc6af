package lifecycle

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/malbeclabs/recordctl/controlplane/recordctl/internal/metrics"
	"github.com/malbeclabs/recordctl/smartcontract/sdk/go/record"
)

// RecordClient is the part of record.Client the orchestrator drives.
type RecordClient interface {
	Executor
	ProgramID() solana.PublicKey
	CreateAccount(ctx context.Context, account solana.PrivateKey, r record.Record) (solana.Signature, *solanarpc.GetTransactionResult, error)
	Initialize(ctx context.Context, config record.InitializeInstructionConfig) (solana.Signature, *solanarpc.GetTransactionResult, error)
	Close(ctx context.Context, config record.CloseInstructionConfig) (solana.Signature, *solanarpc.GetTransactionResult, error)
	GetRecordAccount(ctx context.Context, address solana.PublicKey, r record.Record) (*record.RecordAccount, error)
}

type Config struct {
	Logger *slog.Logger
	Client RecordClient

	// Payer funds and signs every directly submitted transaction.
	Payer solana.PublicKey

	// Account is the keypair of the record account. Its private key is only used to co-sign the
	// create account transaction.
	Account solana.PrivateKey

	// Authority is the external record authority. When unset or equal to the payer, instructions
	// are submitted directly; otherwise they are dumped for external signing.
	Authority *solana.PublicKey

	// Out receives step outcomes and offline dumps. ErrOut receives step failures and defaults to
	// Out.
	Out    io.Writer
	ErrOut io.Writer

	// ShowDiff prints the difference between the on-chain record and the record being written.
	ShowDiff bool
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return fmt.Errorf("%w: logger is required", ErrConfig)
	}
	if c.Client == nil {
		return fmt.Errorf("%w: client is required", ErrConfig)
	}
	if c.Payer.IsZero() {
		return fmt.Errorf("%w: payer public key is required", ErrConfig)
	}
	if len(c.Account) != ed25519.PrivateKeySize {
		return fmt.Errorf("%w: record account keypair is required", ErrConfig)
	}
	if c.Out == nil {
		return fmt.Errorf("%w: output writer is required", ErrConfig)
	}
	return nil
}

// Orchestrator runs the record account lifecycle: create, initialize, write, set authority and
// close. Every step is sequential and nothing is retried.
type Orchestrator struct {
	log      *slog.Logger
	cfg      Config
	strategy Strategy
}

func New(cfg Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ErrOut == nil {
		cfg.ErrOut = cfg.Out
	}
	strategy := SelectStrategy(cfg.Payer, cfg.Authority, cfg.Client, cfg.Out)
	cfg.Logger.Debug("Selected submission strategy", "strategy", strategy.Kind(), "payer", cfg.Payer, "account", cfg.Account.PublicKey())
	return &Orchestrator{
		log:      cfg.Logger,
		cfg:      cfg,
		strategy: strategy,
	}, nil
}

func (o *Orchestrator) Strategy() Strategy {
	return o.strategy
}

func (o *Orchestrator) AccountAddress() solana.PublicKey {
	return o.cfg.Account.PublicKey()
}

// authority is the key recorded by Initialize and expected as signer by the gated instructions.
func (o *Orchestrator) authority() solana.PublicKey {
	if o.cfg.Authority != nil && !o.cfg.Authority.IsZero() {
		return *o.cfg.Authority
	}
	return o.cfg.Payer
}

func (o *Orchestrator) externalAuthority() bool {
	return !o.authority().Equals(o.cfg.Payer)
}

// Init creates the record account sized and funded for r, then initializes it with the authority.
// A failed create stops the sequence. Init always submits directly since Initialize does not need
// the authority's signature.
func (o *Orchestrator) Init(ctx context.Context, r record.Record) error {
	if _, err := record.Encode(r); err != nil {
		metrics.Errors.WithLabelValues(metrics.ErrorTypeEncoding).Inc()
		return err
	}

	account := o.cfg.Account.PublicKey()
	o.log.Info("Creating record account", "account", account, "kind", r.Kind(), "size", record.AccountSize(r))

	sig, _, err := o.cfg.Client.CreateAccount(ctx, o.cfg.Account, r)
	if err != nil {
		if errors.Is(err, record.ErrAccountAlreadyExists) {
			metrics.Errors.WithLabelValues(metrics.ErrorTypeAccountInUse).Inc()
		}
		return o.failed(StepCreateAccount, err)
	}
	o.submitted(StepCreateAccount, sig)

	sig, _, err = o.cfg.Client.Initialize(ctx, record.InitializeInstructionConfig{
		RecordAccount: account,
		Authority:     o.authority(),
	})
	if err != nil {
		return o.failed(StepInitialize, err)
	}
	o.submitted(StepInitialize, sig)
	return nil
}

// Write writes r at offset within the record region. Encoding failures abort before any network
// activity.
func (o *Orchestrator) Write(ctx context.Context, r record.Record, offset uint32) error {
	payload, err := record.Encode(r)
	if err != nil {
		metrics.Errors.WithLabelValues(metrics.ErrorTypeEncoding).Inc()
		return err
	}

	instruction, err := record.BuildWriteInstruction(o.cfg.Client.ProgramID(), record.WriteInstructionConfig{
		RecordAccount: o.cfg.Account.PublicKey(),
		Authority:     o.authority(),
		Offset:        offset,
		Data:          payload,
	})
	if err != nil {
		return fmt.Errorf("failed to build write instruction: %w", err)
	}

	if o.cfg.ShowDiff {
		if o.strategy.Kind() == StrategyOfflineDump {
			o.log.Warn("Skipping record diff, offline mode does not read from the cluster")
		} else if err := o.printDiff(ctx, r, payload, offset); err != nil {
			o.log.Warn("Failed to diff on-chain record", "error", err)
		}
	}

	return o.submit(ctx, StepWrite, instruction)
}

// SetAuthority hands write and close rights over the record account to newAuthority.
func (o *Orchestrator) SetAuthority(ctx context.Context, newAuthority solana.PublicKey) error {
	instruction, err := record.BuildSetAuthorityInstruction(o.cfg.Client.ProgramID(), record.SetAuthorityInstructionConfig{
		RecordAccount: o.cfg.Account.PublicKey(),
		Authority:     o.authority(),
		NewAuthority:  newAuthority,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to build set authority instruction: %w", ErrConfig, err)
	}
	return o.submit(ctx, StepSetAuthority, instruction)
}

// Close closes the record account and returns its lamports to receiver, or to the payer when
// receiver is zero. Close is always submitted directly with the payer as the authority, so the
// program rejects it when an external authority holds the account.
func (o *Orchestrator) Close(ctx context.Context, receiver solana.PublicKey) error {
	if receiver.IsZero() {
		receiver = o.cfg.Payer
	}
	if o.externalAuthority() {
		metrics.Errors.WithLabelValues(metrics.ErrorTypeAuthorityClose).Inc()
		o.log.Warn("Closing with the payer as authority while an external authority is configured, the program will reject it unless the payer holds the account",
			"authority", o.authority(), "payer", o.cfg.Payer)
	}

	sig, _, err := o.cfg.Client.Close(ctx, record.CloseInstructionConfig{
		RecordAccount: o.cfg.Account.PublicKey(),
		Authority:     o.cfg.Payer,
		Receiver:      receiver,
	})
	if err != nil {
		return o.failed(StepClose, err)
	}
	o.submitted(StepClose, sig)
	return nil
}

func (o *Orchestrator) submit(ctx context.Context, step Step, instruction solana.Instruction) error {
	sig, err := o.strategy.Submit(ctx, step, instruction)
	if o.strategy.Kind() == StrategyOfflineDump {
		if err != nil {
			return err
		}
		metrics.OfflineDumps.WithLabelValues(step.label()).Inc()
		o.log.Info("Instruction dumped for external signing", "step", step, "authority", o.authority())
		return nil
	}
	if err != nil {
		return o.failed(step, err)
	}
	o.submitted(step, sig)
	return nil
}

func (o *Orchestrator) submitted(step Step, sig solana.Signature) {
	metrics.Submissions.WithLabelValues(step.label(), metrics.ResultSuccess).Inc()
	fmt.Fprintf(o.cfg.Out, "%s transaction signature: %s\n", step, sig)
}

func (o *Orchestrator) failed(step Step, err error) error {
	metrics.Submissions.WithLabelValues(step.label(), metrics.ResultError).Inc()
	fmt.Fprintf(o.cfg.ErrOut, "Error sending %s transaction: %v\n", strings.ToLower(string(step)), err)
	return &SubmissionError{Step: step, Err: err}
}

func (o *Orchestrator) printDiff(ctx context.Context, r record.Record, payload []byte, offset uint32) error {
	current, err := record.NewRecord(r.Kind())
	if err != nil {
		return err
	}
	if _, err := o.cfg.Client.GetRecordAccount(ctx, o.cfg.Account.PublicKey(), current); err != nil {
		return err
	}
	next, err := applyWrite(current, payload, offset)
	if err != nil {
		return err
	}
	diff, err := diffRecords(string(r.Kind()), current, next)
	if err != nil {
		return err
	}
	if diff == "" {
		fmt.Fprintln(o.cfg.Out, "On-chain record is unchanged by this write")
		return nil
	}
	_, err = fmt.Fprint(o.cfg.Out, diff)
	return err
}
