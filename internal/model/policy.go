package model

// TradingWindow is the open/close minute pair for the trading-hours gate.
// The pair is one optional value so "both present or both absent" holds by
// construction rather than by ad-hoc checks on two nullable columns.
type TradingWindow struct {
	OpenMinute  uint16 `json:"open_minute"`
	CloseMinute uint16 `json:"close_minute"`
}

const MinutesPerDay = 1440

// Valid reports whether the window is inside a UTC day and does not wrap
// midnight. editPolicy enforces this at write time.
func (w TradingWindow) Valid() bool {
	return w.OpenMinute < w.CloseMinute && w.CloseMinute < MinutesPerDay
}

// Contains reports whether the minute-of-day falls inside [open, close).
func (w TradingWindow) Contains(minute uint16) bool {
	return minute >= w.OpenMinute && minute < w.CloseMinute
}

// Policy 每个受控资产一条转账策略记录。
// The four switches are toggled only through updateFlags; editPolicy replaces
// the remaining gate parameters atomically and leaves the switches alone.
type Policy struct {
	Owner Identity `json:"owner" db:"owner"`
	Asset AssetID  `json:"asset" db:"asset"`

	WhitelistEnabled   bool `json:"whitelist_enabled" db:"whitelist_enabled"`
	TradingTimeEnabled bool `json:"trading_time_enabled" db:"trading_time_enabled"`
	MaxTransferEnabled bool `json:"max_transfer_enabled" db:"max_transfer_enabled"`
	NFTGated           bool `json:"nft_gated" db:"nft_gated"`

	Window *TradingWindow `json:"window,omitempty"`

	MaxTransferAmount uint64 `json:"max_transfer_amount" db:"max_transfer_amount"`
	MinTransferAmount uint64 `json:"min_transfer_amount" db:"min_transfer_amount"`

	RequiredCredentialAsset AssetID `json:"required_credential_asset" db:"required_credential_asset"`
}

// AllowListEntry is an existence-only membership marker: presence means the
// principal may send the asset when the whitelist gate is on. No payload.
type AllowListEntry struct {
	Asset     AssetID  `json:"asset" db:"asset"`
	Principal Identity `json:"principal" db:"principal"`
}
