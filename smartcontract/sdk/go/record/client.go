package record

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountAlreadyExists = errors.New("account already exists")
)

const defaultReadMaxTries = 5

type Client struct {
	log      *slog.Logger
	rpc      RPCClient
	executor *executor

	readBackOff  backoff.BackOff
	readMaxTries uint
}

type ClientOption func(*Client)

// WithExecutorOptions configures the transaction executor used for submissions.
func WithExecutorOptions(opts ...ExecutorOption) ClientOption {
	return func(c *Client) {
		for _, opt := range opts {
			opt(c.executor)
		}
	}
}

// WithReadRetry configures how account reads are retried on transport errors. Submissions are never
// retried.
func WithReadRetry(b backoff.BackOff, maxTries uint) ClientOption {
	return func(c *Client) {
		c.readBackOff = b
		c.readMaxTries = maxTries
	}
}

func New(log *slog.Logger, rpc RPCClient, signer *solana.PrivateKey, programID solana.PublicKey, opts ...ClientOption) *Client {
	c := &Client{
		log:          log,
		rpc:          rpc,
		executor:     NewExecutor(log, rpc, signer, programID),
		readBackOff:  backoff.NewExponentialBackOff(),
		readMaxTries: defaultReadMaxTries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ProgramID() solana.PublicKey {
	if c.executor == nil {
		return solana.PublicKey{}
	}
	return c.executor.programID
}

func (c *Client) Signer() *solana.PrivateKey {
	if c.executor == nil {
		return nil
	}
	return c.executor.signer
}

// RentExemptLamports asks the cluster for the rent exempt balance of an account holding r.
func (c *Client) RentExemptLamports(ctx context.Context, r Record) (uint64, error) {
	lamports, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, uint64(AccountSize(r)), c.executor.commitment)
	if err != nil {
		return 0, fmt.Errorf("failed to get rent: %w", err)
	}
	return lamports, nil
}

// CreateAccount funds and allocates a record account sized for r, owned by the record program.
// The account keypair co-signs with the client signer, which pays.
func (c *Client) CreateAccount(
	ctx context.Context,
	account solana.PrivateKey,
	r Record,
) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	if c.executor.signer == nil {
		return solana.Signature{}, nil, ErrNoPrivateKey
	}

	lamports, err := c.RentExemptLamports(ctx, r)
	if err != nil {
		return solana.Signature{}, nil, err
	}

	instruction, err := BuildCreateAccountInstruction(c.executor.programID, CreateAccountInstructionConfig{
		Payer:         c.executor.signer.PublicKey(),
		RecordAccount: account.PublicKey(),
		Lamports:      lamports,
		Space:         uint64(AccountSize(r)),
	})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
	}

	c.log.Debug("Creating record account", "account", account.PublicKey(), "space", AccountSize(r), "lamports", lamports)

	sig, res, err := c.executor.ExecuteTransaction(ctx, instruction, &ExecuteTransactionOptions{
		AdditionalSigners: []solana.PrivateKey{account},
	})
	if err != nil {
		if accountInUse(err, res) {
			return sig, res, ErrAccountAlreadyExists
		}
		return sig, res, fmt.Errorf("failed to create account: %w", err)
	}
	return sig, res, nil
}

// Initialize records the authority of a freshly created record account.
func (c *Client) Initialize(
	ctx context.Context,
	config InitializeInstructionConfig,
) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	instruction, err := BuildInitializeInstruction(c.executor.programID, config)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
	}

	sig, res, err := c.executor.ExecuteTransaction(ctx, instruction, nil)
	if err != nil {
		return sig, res, fmt.Errorf("failed to initialize account: %w", err)
	}
	return sig, res, nil
}

// Write writes record bytes into the record account. The client signer must be the authority.
func (c *Client) Write(
	ctx context.Context,
	config WriteInstructionConfig,
) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	instruction, err := BuildWriteInstruction(c.executor.programID, config)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
	}

	sig, res, err := c.executor.ExecuteTransaction(ctx, instruction, nil)
	if err != nil {
		return sig, res, fmt.Errorf("failed to write account: %w", err)
	}
	return sig, res, nil
}

// Close closes the record account and sends its lamports to the receiver.
func (c *Client) Close(
	ctx context.Context,
	config CloseInstructionConfig,
) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	instruction, err := BuildCloseInstruction(c.executor.programID, config)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
	}

	sig, res, err := c.executor.ExecuteTransaction(ctx, instruction, nil)
	if err != nil {
		return sig, res, fmt.Errorf("failed to close account: %w", err)
	}
	return sig, res, nil
}

// Execute signs and submits an already built instruction with the client signer.
func (c *Client) Execute(ctx context.Context, instruction solana.Instruction) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	return c.executor.ExecuteTransaction(ctx, instruction, nil)
}

// RecordAccount is a decoded record account.
type RecordAccount struct {
	Address  solana.PublicKey
	Lamports uint64
	Owner    solana.PublicKey
	Metadata RecordMetadata
	Record   Record
}

// GetRecordAccount fetches the record account at address and decodes it into r.
func (c *Client) GetRecordAccount(ctx context.Context, address solana.PublicKey, r Record) (*RecordAccount, error) {
	account, err := c.getAccount(ctx, address)
	if err != nil {
		return nil, err
	}
	if !account.Owner.Equals(c.executor.programID) {
		return nil, fmt.Errorf("account %s is owned by %s, not the record program %s", address, account.Owner, c.executor.programID)
	}

	meta, err := DeserializeRecordAccount(account.Data.GetBinary(), r)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize record account: %w", err)
	}
	return &RecordAccount{
		Address:  address,
		Lamports: account.Lamports,
		Owner:    account.Owner,
		Metadata: *meta,
		Record:   r,
	}, nil
}

// GetProgramBinary reads the ProgramData account of an upgradeable program and returns the
// program binary with the header removed.
func (c *Client) GetProgramBinary(ctx context.Context, programID solana.PublicKey) (*ProgramBinary, error) {
	pda, _, err := DeriveProgramDataPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive PDA: %w", err)
	}

	account, err := c.getAccount(ctx, pda)
	if err != nil {
		return nil, err
	}

	programBinary, err := ExtractProgramBinary(account.Data.GetBinary())
	if err != nil {
		return nil, err
	}
	return &ProgramBinary{
		ProgramID:          programID,
		ProgramDataAddress: pda,
		Lamports:           account.Lamports,
		Owner:              account.Owner,
		Binary:             programBinary,
	}, nil
}

func (c *Client) getAccount(ctx context.Context, address solana.PublicKey) (*solanarpc.Account, error) {
	attempt := 0
	account, err := backoff.Retry(ctx, func() (*solanarpc.Account, error) {
		if attempt > 0 {
			c.log.Warn("Failed to get account info, retrying", "account", address, "attempt", attempt)
		}
		attempt++
		res, err := c.rpc.GetAccountInfo(ctx, address)
		if err != nil {
			if errors.Is(err, solanarpc.ErrNotFound) {
				return nil, backoff.Permanent(ErrAccountNotFound)
			}
			return nil, err
		}
		if res == nil || res.Value == nil {
			return nil, backoff.Permanent(ErrAccountNotFound)
		}
		return res.Value, nil
	}, backoff.WithBackOff(c.readBackOff), backoff.WithMaxTries(c.readMaxTries))
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account data: %w", err)
	}
	return account, nil
}

// accountInUse reports whether a create account failure was caused by the address already being in
// use, looking at both preflight logs and the logs of a landed transaction.
func accountInUse(err error, res *solanarpc.GetTransactionResult) bool {
	var logs []string
	if res != nil && res.Meta != nil {
		logs = append(logs, res.Meta.LogMessages...)
	}
	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		if data, ok := rpcErr.Data.(map[string]any); ok {
			if raw, ok := data["logs"].([]any); ok {
				for _, l := range raw {
					if s, ok := l.(string); ok {
						logs = append(logs, s)
					}
				}
			}
		}
	}
	for _, msg := range logs {
		msg = strings.ToLower(msg)
		if strings.Contains(msg, "create account") && strings.Contains(msg, "already in use") {
			return true
		}
	}
	return false
}
