package repository

import (
	"context"
	"sync"

	"github.com/GoLaunchpad/launchgate/internal/keys"
	"github.com/GoLaunchpad/launchgate/internal/ledger"
	"github.com/GoLaunchpad/launchgate/internal/model"
)

// In-memory stores keyed by derived record address, mirroring the
// content-addressed layout a ledger host would use. Default when no database
// is configured; also the test fixture.

type MemoryRegistry struct {
	mu  sync.RWMutex
	cfg *model.GlobalConfig
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{}
}

func (s *MemoryRegistry) Init(ctx context.Context, cfg *model.GlobalConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg != nil {
		return ErrAlreadyExists
	}
	c := *cfg
	s.cfg = &c
	return nil
}

func (s *MemoryRegistry) Get(ctx context.Context) (*model.GlobalConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cfg == nil {
		return nil, ErrNotFound
	}
	c := *s.cfg
	return &c, nil
}

type MemorySaleStore struct {
	mu    sync.RWMutex
	sales map[keys.Address]*model.Sale
}

func NewMemorySaleStore() *MemorySaleStore {
	return &MemorySaleStore{sales: make(map[keys.Address]*model.Sale)}
}

func (s *MemorySaleStore) Create(ctx context.Context, tx ledger.Tx, sale *model.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	addr := keys.Sale(sale.Asset)
	if _, ok := s.sales[addr]; ok {
		return ErrAlreadyExists
	}
	c := *sale
	s.sales[addr] = &c
	return nil
}

func (s *MemorySaleStore) Get(ctx context.Context, tx ledger.Tx, asset model.AssetID) (*model.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sale, ok := s.sales[keys.Sale(asset)]
	if !ok {
		return nil, ErrNotFound
	}
	c := *sale
	return &c, nil
}

func (s *MemorySaleStore) SetTotalSold(ctx context.Context, tx ledger.Tx, asset model.AssetID, total uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale, ok := s.sales[keys.Sale(asset)]
	if !ok {
		return ErrNotFound
	}
	sale.TotalSold = total
	return nil
}

type MemoryPolicyStore struct {
	mu       sync.RWMutex
	policies map[keys.Address]*model.Policy
}

func NewMemoryPolicyStore() *MemoryPolicyStore {
	return &MemoryPolicyStore{policies: make(map[keys.Address]*model.Policy)}
}

func (s *MemoryPolicyStore) Create(ctx context.Context, tx ledger.Tx, policy *model.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	addr := keys.Policy(policy.Asset)
	if _, ok := s.policies[addr]; ok {
		return ErrAlreadyExists
	}
	s.policies[addr] = clonePolicy(policy)
	return nil
}

func (s *MemoryPolicyStore) Get(ctx context.Context, tx ledger.Tx, asset model.AssetID) (*model.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	policy, ok := s.policies[keys.Policy(asset)]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePolicy(policy), nil
}

func (s *MemoryPolicyStore) Update(ctx context.Context, tx ledger.Tx, policy *model.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	addr := keys.Policy(policy.Asset)
	if _, ok := s.policies[addr]; !ok {
		return ErrNotFound
	}
	s.policies[addr] = clonePolicy(policy)
	return nil
}

type MemoryAllowlist struct {
	mu      sync.RWMutex
	entries map[keys.Address]struct{}
}

func NewMemoryAllowlist() *MemoryAllowlist {
	return &MemoryAllowlist{entries: make(map[keys.Address]struct{})}
}

func (s *MemoryAllowlist) Add(ctx context.Context, asset model.AssetID, principal model.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	addr := keys.AllowListEntry(asset, principal)
	if _, ok := s.entries[addr]; ok {
		return ErrAlreadyExists
	}
	s.entries[addr] = struct{}{}
	return nil
}

func (s *MemoryAllowlist) Remove(ctx context.Context, asset model.AssetID, principal model.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	addr := keys.AllowListEntry(asset, principal)
	if _, ok := s.entries[addr]; !ok {
		return ErrNotFound
	}
	delete(s.entries, addr)
	return nil
}

func (s *MemoryAllowlist) Contains(ctx context.Context, asset model.AssetID, principal model.Identity) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[keys.AllowListEntry(asset, principal)]
	return ok, nil
}

func clonePolicy(p *model.Policy) *model.Policy {
	c := *p
	if p.Window != nil {
		w := *p.Window
		c.Window = &w
	}
	return &c
}
