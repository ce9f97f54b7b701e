package model

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// InitializeRegistryRequest bootstraps the global config. The caller becomes
// the owner; treasury defaults to the owner when omitted.
type InitializeRegistryRequest struct {
	Fee      uint64  `json:"fee"`
	Treasury *string `json:"treasury,omitempty"`
}

type InitializeSaleRequest struct {
	Asset            string `json:"asset" binding:"required"`
	SoftCap          uint64 `json:"soft_cap" binding:"required"`
	HardCap          uint64 `json:"hard_cap" binding:"required"`
	StartTime        int64  `json:"start_time" binding:"required"`
	EndTime          int64  `json:"end_time" binding:"required"`
	TotalOffered     uint64 `json:"total_offered" binding:"required"`
	PricePerBaseUnit uint64 `json:"price_per_base_unit" binding:"required"`
}

type PurchaseRequest struct {
	Amount uint64 `json:"amount" binding:"required"`
}

type PurchaseResponse struct {
	Asset       string `json:"asset"`
	Buyer       string `json:"buyer"`
	Amount      uint64 `json:"amount"`
	Cost        uint64 `json:"cost"`
	CostDisplay string `json:"cost_display"`
	TotalSold   uint64 `json:"total_sold"`
}

type SaleResponse struct {
	Sale           *Sale      `json:"sale"`
	Status         SaleStatus `json:"status"`
	SoftCapReached bool       `json:"soft_cap_reached"`
	VaultBalance   uint64     `json:"vault_balance"`
}

// TradingWindowDTO mirrors TradingWindow on the wire; the single optional
// object keeps the both-or-neither pairing visible to API clients.
type TradingWindowDTO struct {
	OpenMinute  uint16 `json:"open_minute"`
	CloseMinute uint16 `json:"close_minute"`
}

type InitializePolicyRequest struct {
	Asset                   string            `json:"asset" binding:"required"`
	Window                  *TradingWindowDTO `json:"window,omitempty"`
	MaxTransferAmount       uint64            `json:"max_transfer_amount"`
	MinTransferAmount       uint64            `json:"min_transfer_amount"`
	RequiredCredentialAsset string            `json:"required_credential_asset,omitempty"`
}

type EditPolicyRequest struct {
	Window                  *TradingWindowDTO `json:"window,omitempty"`
	MaxTransferAmount       uint64            `json:"max_transfer_amount"`
	MinTransferAmount       uint64            `json:"min_transfer_amount"`
	RequiredCredentialAsset string            `json:"required_credential_asset,omitempty"`
}

type UpdateFlagsRequest struct {
	WhitelistEnabled   *bool `json:"whitelist_enabled" binding:"required"`
	TradingTimeEnabled *bool `json:"trading_time_enabled" binding:"required"`
	MaxTransferEnabled *bool `json:"max_transfer_enabled" binding:"required"`
	NFTGated           *bool `json:"nft_gated" binding:"required"`
}

type WhitelistRequest struct {
	Principal string `json:"principal" binding:"required"`
}

// TransferHookRequest is the immutable call context the host passes on every
// transfer of a policy-controlled asset. The authorizer never mutates it.
type TransferHookRequest struct {
	Asset     string `json:"asset" binding:"required"`
	Sender    string `json:"sender" binding:"required"`
	Recipient string `json:"recipient" binding:"required"`
	Amount    uint64 `json:"amount" binding:"required"`
}

type TransferHookResponse struct {
	Permitted bool   `json:"permitted"`
	Reason    string `json:"reason,omitempty"`
}

type FundRequest struct {
	Asset     string `json:"asset"`
	Principal string `json:"principal" binding:"required"`
	Amount    uint64 `json:"amount" binding:"required"`
}

type BalanceResponse struct {
	Asset     string `json:"asset"`
	Principal string `json:"principal"`
	Amount    uint64 `json:"amount"`
	Display   string `json:"display"`
}

// BaseUnitDecimals is the display scale for base units. Matches the 10^9
// scaling the reference deployments use for both tokens and payment currency.
const BaseUnitDecimals = 9

// DisplayAmount renders a base-unit amount in human units without losing
// precision on values past the int64 range.
func DisplayAmount(baseUnits uint64) string {
	v := new(big.Int).SetUint64(baseUnits)
	return decimal.NewFromBigInt(v, -BaseUnitDecimals).String()
}
