package blockchain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	domainErrors "mountainshares.backend/internal/domain/errors"
)

const (
	// TokenDecimals is the MountainShares ERC20 precision.
	TokenDecimals = 18
	// StablecoinDecimals is the USDC precision on Arbitrum.
	StablecoinDecimals = 6

	defaultPollInterval = 500 * time.Millisecond
)

const settlementABI = `[
	{"name":"transfer","type":"function","inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"name":"mint","type":"function","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
	{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

// TxBackend is the slice of the RPC client the settlement client needs for
// sending transactions. *ethclient.Client satisfies it; tests provide a stub.
type TxBackend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// SettlementClient signs and submits settlement transactions: token mints to
// customer wallets and stablecoin transfers for reserve backing, fees and the
// safety stock path. Nonce assignment is serialized by a mutex so concurrent
// settlements never race the pending nonce.
type SettlementClient struct {
	backend           TxBackend
	chainID           *big.Int
	key               *ecdsa.PrivateKey
	signer            common.Address
	tokenAddress      common.Address
	stablecoinAddress common.Address
	contractABI       abi.ABI
	pollInterval      time.Duration

	nonceMu sync.Mutex
}

func NewSettlementClient(backend TxBackend, chainID *big.Int, privateKeyHex, tokenAddress, stablecoinAddress string) (*SettlementClient, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse signer key: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(settlementABI))
	if err != nil {
		return nil, fmt.Errorf("parse settlement abi: %w", err)
	}

	return &SettlementClient{
		backend:           backend,
		chainID:           chainID,
		key:               key,
		signer:            crypto.PubkeyToAddress(key.PublicKey),
		tokenAddress:      common.HexToAddress(tokenAddress),
		stablecoinAddress: common.HexToAddress(stablecoinAddress),
		contractABI:       parsed,
		pollInterval:      defaultPollInterval,
	}, nil
}

// SignerAddress returns the checksummed address the client signs with.
func (c *SettlementClient) SignerAddress() string {
	return c.signer.Hex()
}

// MintTokens mints amount MountainShares tokens to the recipient wallet and
// waits for the transaction to be mined.
func (c *SettlementClient) MintTokens(ctx context.Context, to string, amount decimal.Decimal) (string, error) {
	data, err := c.contractABI.Pack("mint", common.HexToAddress(to), toBaseUnits(amount, TokenDecimals))
	if err != nil {
		return "", domainErrors.NewChainCallError("mint", err)
	}
	return c.sendAndWait(ctx, "mint", c.tokenAddress, data)
}

// TransferStablecoin moves amount USDC from the signer account to the
// recipient and waits for the transaction to be mined.
func (c *SettlementClient) TransferStablecoin(ctx context.Context, to string, amount decimal.Decimal) (string, error) {
	data, err := c.contractABI.Pack("transfer", common.HexToAddress(to), toBaseUnits(amount, StablecoinDecimals))
	if err != nil {
		return "", domainErrors.NewChainCallError("transfer", err)
	}
	return c.sendAndWait(ctx, "transfer", c.stablecoinAddress, data)
}

// StablecoinBalance reads the signer's USDC balance as a decimal amount.
func (c *SettlementClient) StablecoinBalance(ctx context.Context) (decimal.Decimal, error) {
	data, err := c.contractABI.Pack("balanceOf", c.signer)
	if err != nil {
		return decimal.Zero, domainErrors.NewChainCallError("balanceOf", err)
	}
	out, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &c.stablecoinAddress, Data: data}, nil)
	if err != nil {
		return decimal.Zero, domainErrors.NewChainCallError("balanceOf", err)
	}
	raw := new(big.Int).SetBytes(out)
	return decimal.NewFromBigInt(raw, -StablecoinDecimals), nil
}

func (c *SettlementClient) sendAndWait(ctx context.Context, op string, contract common.Address, data []byte) (string, error) {
	signed, err := c.submit(ctx, op, contract, data)
	if err != nil {
		return "", err
	}

	receipt, err := c.waitMined(ctx, signed.Hash())
	if err != nil {
		return "", domainErrors.NewChainCallError(op, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", domainErrors.NewChainCallError(op, fmt.Errorf("transaction %s reverted", signed.Hash().Hex()))
	}
	return signed.Hash().Hex(), nil
}

// submit holds the nonce lock from fetch through send so two concurrent
// settlements cannot observe the same pending nonce.
func (c *SettlementClient) submit(ctx context.Context, op string, contract common.Address, data []byte) (*types.Transaction, error) {
	c.nonceMu.Lock()
	defer c.nonceMu.Unlock()

	nonce, err := c.backend.PendingNonceAt(ctx, c.signer)
	if err != nil {
		return nil, domainErrors.NewChainCallError(op, err)
	}
	gasPrice, err := c.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, domainErrors.NewChainCallError(op, err)
	}
	gasLimit, err := c.backend.EstimateGas(ctx, ethereum.CallMsg{
		From: c.signer,
		To:   &contract,
		Data: data,
	})
	if err != nil {
		// Reverts surface here, before anything is spent.
		return nil, domainErrors.NewChainCallError(op, err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       &contract,
		Value:    big.NewInt(0),
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.key)
	if err != nil {
		return nil, domainErrors.NewChainCallError(op, err)
	}
	if err := c.backend.SendTransaction(ctx, signed); err != nil {
		return nil, domainErrors.NewChainCallError(op, err)
	}
	return signed, nil
}

func (c *SettlementClient) waitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.backend.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func toBaseUnits(amount decimal.Decimal, decimals int32) *big.Int {
	return amount.Shift(decimals).BigInt()
}
