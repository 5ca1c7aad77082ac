package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/veritrace/veritrace/internal/config"
	"github.com/veritrace/veritrace/internal/observability"
)

// EthereumGateway is the go-ethereum backed Gateway implementation. All
// transactions are signed with a single operator key; transact calls are
// serialized so concurrent requests cannot race the operator nonce.
type EthereumGateway struct {
	client   *ethclient.Client
	chainID  *big.Int
	token    *bind.BoundContract
	escrow   *bind.BoundContract
	tokenABI abi.ABI
	txOpts   *bind.TransactOpts

	callTimeout    time.Duration
	confirmTimeout time.Duration

	txMu sync.Mutex
}

func NewEthereumGateway(cfg *config.Config) (*EthereumGateway, error) {
	client, err := ethclient.Dial(cfg.ChainRPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial chain rpc: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ChainCallTimeout)
	defer cancel()
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("query chain id: %w", err)
	}
	if chainID.Int64() != cfg.ChainID {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrWrongNetwork, chainID.Int64(), cfg.ChainID)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.OperatorPrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse operator key: %w", err)
	}
	txOpts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("build transactor: %w", err)
	}

	tokenABI, err := abi.JSON(strings.NewReader(tokenContractABI))
	if err != nil {
		return nil, fmt.Errorf("parse token abi: %w", err)
	}
	escrowABI, err := abi.JSON(strings.NewReader(escrowContractABI))
	if err != nil {
		return nil, fmt.Errorf("parse escrow abi: %w", err)
	}

	return &EthereumGateway{
		client:         client,
		chainID:        chainID,
		token:          bind.NewBoundContract(common.HexToAddress(cfg.TokenContractAddress), tokenABI, client, client, client),
		escrow:         bind.NewBoundContract(common.HexToAddress(cfg.EscrowContractAddress), escrowABI, client, client, client),
		tokenABI:       tokenABI,
		txOpts:         txOpts,
		callTimeout:    cfg.ChainCallTimeout,
		confirmTimeout: cfg.ChainConfirmTimeout,
	}, nil
}

func (g *EthereumGateway) Mint(ctx context.Context, recipient, metadata string) (MintResult, error) {
	start := time.Now()
	if !IsHexAddress(recipient) {
		return MintResult{}, ErrInvalidAddress
	}

	tx, err := g.transact(ctx, g.token, nil, "mintProductNFT", common.HexToAddress(recipient), metadata)
	if err != nil {
		observability.RecordChainCall(ctx, "mint", "error", time.Since(start))
		return MintResult{}, classifyTxError("mint product token", err)
	}
	receipt, err := g.waitMined(ctx, tx)
	if err != nil {
		observability.RecordChainCall(ctx, "mint", "error", time.Since(start))
		return MintResult{}, err
	}

	tokenID, ok := g.mintedTokenID(receipt)
	if !ok {
		observability.RecordChainCall(ctx, "mint", "no_token_id", time.Since(start))
		return MintResult{}, ErrTokenIDNotFound
	}
	observability.RecordChainCall(ctx, "mint", "success", time.Since(start))
	return MintResult{TxHash: tx.Hash().Hex(), TokenID: tokenID}, nil
}

func (g *EthereumGateway) Transfer(ctx context.Context, tokenID, from, to string) (TxResult, error) {
	start := time.Now()
	id, err := parseTokenID(tokenID)
	if err != nil {
		return TxResult{}, err
	}
	if !IsHexAddress(from) || !IsHexAddress(to) {
		return TxResult{}, ErrInvalidAddress
	}

	tx, err := g.transact(ctx, g.token, nil, "safeTransferFrom", common.HexToAddress(from), common.HexToAddress(to), id)
	if err != nil {
		observability.RecordChainCall(ctx, "transfer", "error", time.Since(start))
		return TxResult{}, classifyTxError("transfer token", err)
	}
	if _, err := g.waitMined(ctx, tx); err != nil {
		observability.RecordChainCall(ctx, "transfer", "error", time.Since(start))
		return TxResult{}, err
	}
	observability.RecordChainCall(ctx, "transfer", "success", time.Since(start))
	return TxResult{TxHash: tx.Hash().Hex()}, nil
}

func (g *EthereumGateway) InitiateEscrow(ctx context.Context, tokenID, seller string, amountWei *big.Int) (TxResult, error) {
	start := time.Now()
	id, err := parseTokenID(tokenID)
	if err != nil {
		return TxResult{}, err
	}
	if !IsHexAddress(seller) {
		return TxResult{}, ErrInvalidAddress
	}
	if amountWei == nil || amountWei.Sign() <= 0 {
		return TxResult{}, fmt.Errorf("escrow amount must be positive")
	}

	tx, err := g.transact(ctx, g.escrow, amountWei, "initiatePayment", id, common.HexToAddress(seller))
	if err != nil {
		observability.RecordChainCall(ctx, "escrow_initiate", "error", time.Since(start))
		return TxResult{}, classifyTxError("initiate escrow payment", err)
	}
	if _, err := g.waitMined(ctx, tx); err != nil {
		observability.RecordChainCall(ctx, "escrow_initiate", "error", time.Since(start))
		return TxResult{}, err
	}
	observability.RecordChainCall(ctx, "escrow_initiate", "success", time.Since(start))
	return TxResult{TxHash: tx.Hash().Hex()}, nil
}

func (g *EthereumGateway) ApproveEscrow(ctx context.Context, tokenID string) (TxResult, error) {
	return g.resolveEscrow(ctx, tokenID, "approvePayment", "escrow_approve")
}

func (g *EthereumGateway) RejectEscrow(ctx context.Context, tokenID string) (TxResult, error) {
	return g.resolveEscrow(ctx, tokenID, "rejectPayment", "escrow_reject")
}

func (g *EthereumGateway) resolveEscrow(ctx context.Context, tokenID, method, metricOp string) (TxResult, error) {
	start := time.Now()
	id, err := parseTokenID(tokenID)
	if err != nil {
		return TxResult{}, err
	}

	tx, err := g.transact(ctx, g.escrow, nil, method, id)
	if err != nil {
		observability.RecordChainCall(ctx, metricOp, "error", time.Since(start))
		return TxResult{}, classifyTxError("resolve escrow payment", err)
	}
	if _, err := g.waitMined(ctx, tx); err != nil {
		observability.RecordChainCall(ctx, metricOp, "error", time.Since(start))
		return TxResult{}, err
	}
	observability.RecordChainCall(ctx, metricOp, "success", time.Since(start))
	return TxResult{TxHash: tx.Hash().Hex()}, nil
}

func (g *EthereumGateway) OwnerOf(ctx context.Context, tokenID string) (string, error) {
	start := time.Now()
	id, err := parseTokenID(tokenID)
	if err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()
	var out []interface{}
	if err := g.token.Call(&bind.CallOpts{Context: callCtx}, &out, "ownerOf", id); err != nil {
		observability.RecordChainCall(ctx, "owner_of", "error", time.Since(start))
		return "", classifyTxError("read token owner", err)
	}
	owner, ok := out[0].(common.Address)
	if !ok {
		observability.RecordChainCall(ctx, "owner_of", "error", time.Since(start))
		return "", fmt.Errorf("unexpected ownerOf result type %T", out[0])
	}
	observability.RecordChainCall(ctx, "owner_of", "success", time.Since(start))
	return strings.ToLower(owner.Hex()), nil
}

func (g *EthereumGateway) TokenIDs(ctx context.Context) ([]string, error) {
	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	var out []interface{}
	if err := g.token.Call(&bind.CallOpts{Context: callCtx}, &out, "getAllContractTokens"); err != nil {
		observability.RecordChainCall(ctx, "token_ids", "error", time.Since(start))
		return nil, classifyTxError("list contract tokens", err)
	}
	raw, ok := out[0].([]*big.Int)
	if !ok {
		observability.RecordChainCall(ctx, "token_ids", "error", time.Since(start))
		return nil, fmt.Errorf("unexpected getAllContractTokens result type %T", out[0])
	}
	ids := make([]string, 0, len(raw))
	for _, id := range raw {
		ids = append(ids, id.String())
	}
	observability.RecordChainCall(ctx, "token_ids", "success", time.Since(start))
	return ids, nil
}

func (g *EthereumGateway) Ping(ctx context.Context) error {
	callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()
	chainID, err := g.client.ChainID(callCtx)
	if err != nil {
		return err
	}
	if chainID.Cmp(g.chainID) != 0 {
		return fmt.Errorf("%w: got %s, want %s", ErrWrongNetwork, chainID, g.chainID)
	}
	return nil
}

// transact serializes operator-key transactions; concurrent submissions with
// the same key would otherwise race the pending nonce.
func (g *EthereumGateway) transact(ctx context.Context, contract *bind.BoundContract, value *big.Int, method string, args ...interface{}) (*types.Transaction, error) {
	g.txMu.Lock()
	defer g.txMu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	opts := *g.txOpts
	opts.Context = callCtx
	opts.Value = value
	return contract.Transact(&opts, method, args...)
}

func (g *EthereumGateway) waitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, g.confirmTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, g.client, tx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrConfirmTimeout, tx.Hash().Hex())
		}
		return nil, fmt.Errorf("wait for confirmation: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: %s", ErrTxReverted, tx.Hash().Hex())
	}
	return receipt, nil
}

// mintedTokenID scans receipt logs for the token contract's ProductMinted
// event and returns the indexed token id.
func (g *EthereumGateway) mintedTokenID(receipt *types.Receipt) (string, bool) {
	eventID := g.tokenABI.Events["ProductMinted"].ID
	for _, log := range receipt.Logs {
		if log == nil || len(log.Topics) < 2 {
			continue
		}
		if log.Topics[0] != eventID {
			continue
		}
		return log.Topics[1].Big().String(), true
	}
	return "", false
}

// classifyTxError maps raw go-ethereum / JSON-RPC errors onto the gateway's
// error taxonomy, preserving the revert reason as detail.
func classifyTxError(op string, err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "insufficient funds"):
		return fmt.Errorf("%w: %s", ErrInsufficientFunds, op)
	case strings.Contains(msg, "execution reverted"), strings.Contains(msg, "not owner nor approved"):
		return fmt.Errorf("%w: %s: %v", ErrTransferRejected, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
