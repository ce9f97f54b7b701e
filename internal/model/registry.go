package model

// GlobalConfig 全局单例配置：owner + 固定费用。
// Created exactly once per deployment by the first initialize call; every
// owner-only path re-checks Owner explicitly instead of trusting the caller.
type GlobalConfig struct {
	Owner    Identity `json:"owner" db:"owner"`
	Fee      uint64   `json:"fee" db:"fee"`
	Treasury Identity `json:"treasury" db:"treasury"` // setup-fee recipient, defaults to Owner
}
