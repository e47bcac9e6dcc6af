package record

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/jonboulle/clockwork"
)

var (
	// ErrNoPrivateKey is returned when a transaction signing operation is attempted without a configured private key.
	ErrNoPrivateKey = errors.New("no private key configured")

	// ErrNoProgramID is returned when a transaction signing operation is attempted without a configured program ID.
	ErrNoProgramID = errors.New("no program ID configured")

	// ErrTransactionFailed is returned when the cluster reports an execution error for a submitted transaction.
	ErrTransactionFailed = errors.New("transaction failed")
)

type executor struct {
	log                   *slog.Logger
	rpc                   RPCClient
	signer                *solana.PrivateKey
	programID             solana.PublicKey
	commitment            solanarpc.CommitmentType
	clock                 clockwork.Clock
	waitForVisibleTimeout time.Duration
	pollInterval          time.Duration
}

type ExecutorOption func(*executor)

func WithWaitForVisibleTimeout(timeout time.Duration) ExecutorOption {
	return func(e *executor) {
		e.waitForVisibleTimeout = timeout
	}
}

// WithCommitment sets the commitment a transaction must reach before ExecuteTransaction returns.
// Only confirmed and finalized are meaningful.
func WithCommitment(commitment solanarpc.CommitmentType) ExecutorOption {
	return func(e *executor) {
		e.commitment = commitment
	}
}

func WithClock(clock clockwork.Clock) ExecutorOption {
	return func(e *executor) {
		e.clock = clock
	}
}

func WithPollInterval(interval time.Duration) ExecutorOption {
	return func(e *executor) {
		e.pollInterval = interval
	}
}

func NewExecutor(log *slog.Logger, rpc RPCClient, signer *solana.PrivateKey, programID solana.PublicKey, opts ...ExecutorOption) *executor {
	e := &executor{
		log:                   log,
		rpc:                   rpc,
		signer:                signer,
		programID:             programID,
		commitment:            solanarpc.CommitmentConfirmed,
		clock:                 clockwork.NewRealClock(),
		waitForVisibleTimeout: 3 * time.Second,
		pollInterval:          250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type ExecuteTransactionOptions struct {
	SkipPreflight bool

	// AdditionalSigners sign alongside the fee payer, e.g. the keypair of an account being created.
	AdditionalSigners []solana.PrivateKey
}

func (e *executor) ExecuteTransaction(ctx context.Context, instruction solana.Instruction, opts *ExecuteTransactionOptions) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	return e.ExecuteTransactions(ctx, []solana.Instruction{instruction}, opts)
}

func (e *executor) ExecuteTransactions(ctx context.Context, instructions []solana.Instruction, opts *ExecuteTransactionOptions) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	if opts == nil {
		opts = &ExecuteTransactionOptions{}
	}

	if e.signer == nil {
		return solana.Signature{}, nil, ErrNoPrivateKey
	}
	if e.programID.IsZero() {
		return solana.Signature{}, nil, ErrNoProgramID
	}

	// Get latest blockhash
	blockhashResult, err := e.rpc.GetLatestBlockhash(ctx, solanarpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	// Build transaction
	tx, err := solana.NewTransaction(
		instructions,
		blockhashResult.Value.Blockhash,
		solana.TransactionPayer(e.signer.PublicKey()),
	)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build transaction: %w", err)
	}
	if tx == nil {
		return solana.Signature{}, nil, errors.New("transaction build failed: nil result")
	}

	// Sign transaction
	signers := append([]solana.PrivateKey{*e.signer}, opts.AdditionalSigners...)
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		for i := range signers {
			if key.Equals(signers[i].PublicKey()) {
				return &signers[i]
			}
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to sign transaction (likely missing signer): %w", err)
	}
	if len(tx.Signatures) == 0 {
		return solana.Signature{}, nil, errors.New("signed transaction appears malformed")
	}

	// Send transaction
	sig, err := e.rpc.SendTransactionWithOpts(ctx, tx, solanarpc.TransactionOpts{
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: e.commitment,
	})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	// Wait for the signature to be visible
	err = e.waitForSignatureVisible(ctx, sig, e.waitForVisibleTimeout)
	if err != nil {
		if opts.SkipPreflight {
			return solana.Signature{}, nil, fmt.Errorf("transaction dropped or rejected before cluster saw it. make sure you have sufficient funds for the transaction: %w", err)
		}
		return solana.Signature{}, nil, fmt.Errorf("transaction dropped or rejected before cluster saw it: %w", err)
	}

	// Wait for the transaction to reach the configured commitment
	res, err := e.waitForTransactionCommitted(ctx, sig)
	if err != nil {
		return sig, res, fmt.Errorf("failed to get transaction: %w", err)
	}

	return sig, res, nil
}

func (e *executor) waitForSignatureVisible(ctx context.Context, sig solana.Signature, timeout time.Duration) error {
	deadline := e.clock.Now().Add(timeout)

	for e.clock.Now().Before(deadline) {
		resp, err := e.rpc.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			return err
		}
		if len(resp.Value) > 0 && resp.Value[0] != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.clock.After(e.pollInterval):
		}
	}
	return errors.New("signature not found after wait")
}

func (e *executor) reached(status solanarpc.ConfirmationStatusType) bool {
	switch e.commitment {
	case solanarpc.CommitmentFinalized:
		return status == solanarpc.ConfirmationStatusFinalized
	default:
		return status == solanarpc.ConfirmationStatusConfirmed || status == solanarpc.ConfirmationStatusFinalized
	}
}

func (e *executor) waitForTransactionCommitted(ctx context.Context, sig solana.Signature) (*solanarpc.GetTransactionResult, error) {
	e.log.Debug("--> Waiting for transaction", "sig", sig, "commitment", e.commitment)
	start := e.clock.Now()
	for {
		statusResp, err := e.rpc.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			return nil, err
		}
		if len(statusResp.Value) == 0 {
			return nil, errors.New("transaction not found")
		}
		status := statusResp.Value[0]
		if status != nil && e.reached(status.ConfirmationStatus) {
			e.log.Debug("--> Transaction committed", "sig", sig, "duration", e.clock.Since(start))
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-e.clock.After(e.pollInterval):
			e.log.Debug("--> Still waiting for transaction", "sig", sig, "elapsed", e.clock.Since(start))
		}
	}

	tx, err := e.rpc.GetTransaction(ctx, sig, &solanarpc.GetTransactionOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: e.commitment,
	})
	if err != nil {
		return nil, err
	}
	if tx == nil || tx.Meta == nil {
		return nil, errors.New("transaction not found or missing metadata after confirmation")
	}
	if tx.Meta.Err != nil {
		return tx, fmt.Errorf("%w: %v", ErrTransactionFailed, tx.Meta.Err)
	}
	return tx, nil
}
