// Package clock isolates the authoritative time source.
//
// Every settlement step reads the clock exactly once and threads that reading
// through all of its checks, so the sale-window check and the trading-hours
// gate can never disagree within one step.
package clock

import "time"

// Clock returns the current Unix timestamp in seconds.
type Clock interface {
	Now() int64
}

// System reads the host's tamper-resistant time source. In-process this is
// the OS clock in UTC; a ledger host would substitute its consensus clock.
type System struct{}

func (System) Now() int64 {
	return time.Now().UTC().Unix()
}

// Fixed is a frozen clock for tests and replay tooling.
type Fixed int64

func (f Fixed) Now() int64 {
	return int64(f)
}
