package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/nischaysood/creator-connect/internal/domain"
	"github.com/nischaysood/creator-connect/internal/ports"
)

// escrowABI covers the two contract entry points the agent touches. The
// enrollment tuple layout must match the deployed CampaignEscrow contract.
const escrowABI = `[
  {"type":"function","name":"verifyAndRelease","stateMutability":"nonpayable",
   "inputs":[{"name":"campaignId","type":"uint256"},{"name":"creator","type":"address"},{"name":"isValid","type":"bool"}],
   "outputs":[]},
  {"type":"function","name":"getCampaignEnrollments","stateMutability":"view",
   "inputs":[{"name":"campaignId","type":"uint256"}],
   "outputs":[{"name":"","type":"tuple[]","components":[
     {"name":"creator","type":"address"},
     {"name":"submissionUrl","type":"string"},
     {"name":"isVerified","type":"bool"},
     {"name":"isPaid","type":"bool"},
     {"name":"joinedAt","type":"uint256"}]}]}
]`

const defaultGasLimit = 300000

type Config struct {
	RPCURL          string
	ContractAddress string
	AgentPrivateKey string
	ChainID         int64
	GasLimit        uint64
}

// Client signs and submits escrow transactions as the platform's verifier
// agent account. VerifyAndRelease makes exactly one on-chain attempt.
type Client struct {
	eth      *ethclient.Client
	abi      abi.ABI
	key      *ecdsa.PrivateKey
	from     common.Address
	contract common.Address
	chainID  *big.Int
	gasLimit uint64
	logger   *slog.Logger
}

type escrowEnrollment struct {
	Creator       common.Address
	SubmissionUrl string
	IsVerified    bool
	IsPaid        bool
	JoinedAt      *big.Int
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.RPCURL) == "" {
		return nil, fmt.Errorf("escrow: rpc url is required")
	}
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("escrow: invalid contract address %q", cfg.ContractAddress)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(cfg.AgentPrivateKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("escrow: invalid agent private key: %w", err)
	}
	parsedABI, err := abi.JSON(strings.NewReader(escrowABI))
	if err != nil {
		return nil, fmt.Errorf("escrow: parse abi: %w", err)
	}

	eth, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("escrow: dial rpc: %w", err)
	}
	chainID := big.NewInt(cfg.ChainID)
	if cfg.ChainID == 0 {
		chainID, err = eth.ChainID(ctx)
		if err != nil {
			eth.Close()
			return nil, fmt.Errorf("escrow: resolve chain id: %w", err)
		}
	}
	gasLimit := cfg.GasLimit
	if gasLimit == 0 {
		gasLimit = defaultGasLimit
	}

	return &Client{
		eth:      eth,
		abi:      parsedABI,
		key:      key,
		from:     crypto.PubkeyToAddress(key.PublicKey),
		contract: common.HexToAddress(cfg.ContractAddress),
		chainID:  chainID,
		gasLimit: gasLimit,
		logger:   slog.Default().With("module", "escrow", "layer", "adapter"),
	}, nil
}

func (c *Client) Close() {
	if c.eth != nil {
		c.eth.Close()
	}
}

// VerifyAndRelease marks the enrollment verified and releases the campaign
// payout to the creator in one contract call. Returns the transaction hash.
func (c *Client) VerifyAndRelease(ctx context.Context, campaignID uint64, creatorAddress string) (string, error) {
	if !common.IsHexAddress(creatorAddress) {
		return "", fmt.Errorf("invalid creator address %q", creatorAddress)
	}
	data, err := c.abi.Pack("verifyAndRelease", new(big.Int).SetUint64(campaignID), common.HexToAddress(creatorAddress), true)
	if err != nil {
		return "", fmt.Errorf("pack verifyAndRelease: %w", err)
	}

	nonce, err := c.eth.PendingNonceAt(ctx, c.from)
	if err != nil {
		return "", fmt.Errorf("fetch nonce: %w", err)
	}
	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("suggest gas price: %w", err)
	}
	gasLimit := c.gasLimit
	if estimated, err := c.eth.EstimateGas(ctx, geth.CallMsg{From: c.from, To: &c.contract, Data: data}); err == nil {
		gasLimit = estimated + estimated/5
	}

	tx := types.NewTransaction(nonce, c.contract, big.NewInt(0), gasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.key)
	if err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}
	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}

	c.logger.InfoContext(ctx, "payment release submitted",
		"operation", "verify_and_release", "outcome", "success",
		"campaign_id", campaignID, "creator", creatorAddress, "tx_hash", signed.Hash().Hex())
	return signed.Hash().Hex(), nil
}

// GetEnrollment reads the campaign's enrollment list and returns the entry
// for the given creator. domain.ErrNotFound when the creator never enrolled.
func (c *Client) GetEnrollment(ctx context.Context, campaignID uint64, creatorAddress string) (ports.Enrollment, error) {
	if !common.IsHexAddress(creatorAddress) {
		return ports.Enrollment{}, fmt.Errorf("invalid creator address %q", creatorAddress)
	}
	data, err := c.abi.Pack("getCampaignEnrollments", new(big.Int).SetUint64(campaignID))
	if err != nil {
		return ports.Enrollment{}, fmt.Errorf("pack getCampaignEnrollments: %w", err)
	}
	raw, err := c.eth.CallContract(ctx, geth.CallMsg{To: &c.contract, Data: data}, nil)
	if err != nil {
		return ports.Enrollment{}, fmt.Errorf("call getCampaignEnrollments: %w", err)
	}
	outputs, err := c.abi.Unpack("getCampaignEnrollments", raw)
	if err != nil || len(outputs) == 0 {
		return ports.Enrollment{}, fmt.Errorf("unpack enrollments: %w", err)
	}
	enrollments := *abi.ConvertType(outputs[0], new([]escrowEnrollment)).(*[]escrowEnrollment)
	return findEnrollment(enrollments, creatorAddress)
}

func findEnrollment(enrollments []escrowEnrollment, creatorAddress string) (ports.Enrollment, error) {
	target := common.HexToAddress(creatorAddress)
	for _, e := range enrollments {
		if e.Creator == target {
			return ports.Enrollment{
				Creator:       e.Creator.Hex(),
				SubmissionURL: e.SubmissionUrl,
				Verified:      e.IsVerified,
				Paid:          e.IsPaid,
			}, nil
		}
	}
	return ports.Enrollment{}, fmt.Errorf("creator %s: %w", creatorAddress, domain.ErrNotFound)
}
