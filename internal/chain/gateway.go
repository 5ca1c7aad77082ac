package chain

import (
	"context"
	"errors"
	"math/big"
	"strings"
)

// Gateway translates application intents into on-chain transactions and
// read-backs against the product-token and payment-escrow contracts. It
// carries no business logic of its own; all write operations block until one
// confirmation is observed or the configured deadline expires.
type Gateway interface {
	// Mint submits a mint transaction for recipient and returns the token id
	// extracted from the receipt's ProductMinted event.
	Mint(ctx context.Context, recipient, metadata string) (MintResult, error)

	// Transfer moves tokenID from its current owner to the destination
	// address. The operator key must own the token or be an approved
	// operator for it.
	Transfer(ctx context.Context, tokenID, from, to string) (TxResult, error)

	// InitiateEscrow locks amountWei in the escrow contract against tokenID.
	InitiateEscrow(ctx context.Context, tokenID, seller string, amountWei *big.Int) (TxResult, error)

	// ApproveEscrow releases the pending escrow entry for tokenID to the seller.
	ApproveEscrow(ctx context.Context, tokenID string) (TxResult, error)

	// RejectEscrow refunds the pending escrow entry for tokenID to the payer.
	RejectEscrow(ctx context.Context, tokenID string) (TxResult, error)

	// OwnerOf returns the current owner of tokenID, lower-cased.
	OwnerOf(ctx context.Context, tokenID string) (string, error)

	// TokenIDs lists every token id the contract has minted.
	TokenIDs(ctx context.Context) ([]string, error)

	// Ping verifies the RPC endpoint is reachable and on the expected network.
	Ping(ctx context.Context) error
}

type MintResult struct {
	TxHash  string
	TokenID string
}

type TxResult struct {
	TxHash string
}

var (
	ErrTokenIDNotFound   = errors.New("minted token id not found in transaction logs")
	ErrTransferRejected  = errors.New("transfer rejected by contract")
	ErrInsufficientFunds = errors.New("insufficient funds for transaction")
	ErrWrongNetwork      = errors.New("rpc endpoint reports unexpected chain id")
	ErrInvalidAddress    = errors.New("invalid wallet address")
	ErrInvalidTokenID    = errors.New("invalid token id")
	ErrTxReverted        = errors.New("transaction reverted on chain")
	ErrConfirmTimeout    = errors.New("timed out waiting for transaction confirmation")
)

// IsHexAddress reports whether v is a well-formed 42-character 0x-prefixed
// hex address.
func IsHexAddress(v string) bool {
	if len(v) != 42 || !strings.HasPrefix(v, "0x") {
		return false
	}
	for _, r := range v[2:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// NormalizeAddress lower-cases a hex address. Persisted owner fields always
// hold the normalized form; callers validate with IsHexAddress first.
func NormalizeAddress(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func parseTokenID(tokenID string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(strings.TrimSpace(tokenID), 10)
	if !ok || id.Sign() < 0 {
		return nil, ErrInvalidTokenID
	}
	return id, nil
}
