package model

// SaleStatus is derived from the sale window and counters at query time; it is
// never stored.
type SaleStatus string

const (
	SaleStatusPending SaleStatus = "pending"
	SaleStatusActive  SaleStatus = "active"
	SaleStatusEnded   SaleStatus = "ended"
	SaleStatusSoldOut SaleStatus = "sold_out"
)

// Sale 每个资产一条销售记录，由 PurchaseEngine 独占修改。
// Invariants: 0 < SoftCap <= HardCap <= TotalOffered, StartTime < EndTime,
// TotalSold <= HardCap and monotonically non-decreasing. The record is terminal:
// it survives the sale and stays queryable.
type Sale struct {
	Creator          Identity `json:"creator" db:"creator"`
	Asset            AssetID  `json:"asset" db:"asset"`
	SoftCap          uint64   `json:"soft_cap" db:"soft_cap"`
	HardCap          uint64   `json:"hard_cap" db:"hard_cap"`
	StartTime        int64    `json:"start_time" db:"start_time"`
	EndTime          int64    `json:"end_time" db:"end_time"`
	TotalOffered     uint64   `json:"total_offered" db:"total_offered"`
	PricePerBaseUnit uint64   `json:"price_per_base_unit" db:"price_per_base_unit"`
	TotalSold        uint64   `json:"total_sold" db:"total_sold"`
}

// StatusAt derives the sale state at the given clock reading.
func (s *Sale) StatusAt(now int64) SaleStatus {
	switch {
	case s.TotalSold >= s.HardCap:
		return SaleStatusSoldOut
	case now < s.StartTime:
		return SaleStatusPending
	case now >= s.EndTime:
		return SaleStatusEnded
	default:
		return SaleStatusActive
	}
}

// SoftCapReached is informational only: the soft cap never blocks a purchase,
// it just feeds downstream settlement decisions.
func (s *Sale) SoftCapReached() bool {
	return s.TotalSold >= s.SoftCap
}
