package ledger

import (
	"context"
	"sync"

	"github.com/GoLaunchpad/launchgate/internal/model"
)

type acctKey struct {
	asset  model.AssetID
	holder model.Identity
}

// Memory is the in-process ledger used when no database is configured, and in
// tests. One mutex per ledger: the host serializes conflicting writes, we
// serialize everything.
type Memory struct {
	mu       sync.Mutex
	balances map[acctKey]uint64
}

func NewMemory() *Memory {
	return &Memory{balances: make(map[acctKey]uint64)}
}

func (l *Memory) Settle(ctx context.Context, fn func(tx Tx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx := &memTx{base: l.balances, staged: make(map[acctKey]uint64)}
	if err := fn(tx); err != nil {
		// Staged writes are discarded wholesale; no partial application.
		return err
	}
	for k, v := range tx.staged {
		l.balances[k] = v
	}
	return nil
}

func (l *Memory) View(ctx context.Context, fn func(tx Tx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(&memTx{base: l.balances, readOnly: true})
}

func (l *Memory) Balance(ctx context.Context, asset model.AssetID, holder model.Identity) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[acctKey{asset, holder}], nil
}

type memTx struct {
	base     map[acctKey]uint64
	staged   map[acctKey]uint64
	readOnly bool
}

func (t *memTx) get(k acctKey) uint64 {
	if !t.readOnly {
		if v, ok := t.staged[k]; ok {
			return v
		}
	}
	return t.base[k]
}

func (t *memTx) Balance(ctx context.Context, asset model.AssetID, holder model.Identity) (uint64, error) {
	return t.get(acctKey{asset, holder}), nil
}

func (t *memTx) Transfer(ctx context.Context, asset model.AssetID, from, to model.Identity, amount uint64) error {
	if t.readOnly {
		return ErrReadOnlyStep
	}
	fromKey := acctKey{asset, from}
	toKey := acctKey{asset, to}

	fromBal := t.get(fromKey)
	if fromBal < amount {
		return ErrInsufficientFunds
	}
	if from == to {
		return nil
	}
	toBal, ok := model.CheckedAdd(t.get(toKey), amount)
	if !ok {
		return ErrBalanceOverflow
	}
	t.staged[fromKey] = fromBal - amount
	t.staged[toKey] = toBal
	return nil
}

func (t *memTx) Mint(ctx context.Context, asset model.AssetID, holder model.Identity, amount uint64) error {
	if t.readOnly {
		return ErrReadOnlyStep
	}
	k := acctKey{asset, holder}
	bal, ok := model.CheckedAdd(t.get(k), amount)
	if !ok {
		return ErrBalanceOverflow
	}
	t.staged[k] = bal
	return nil
}
