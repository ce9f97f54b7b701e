package repository

import (
	"context"

	"github.com/GoLaunchpad/launchgate/internal/keys"
	"github.com/GoLaunchpad/launchgate/internal/model"
)

// RedisAllowlist keeps membership markers as keys with no TTL: the registry
// is durable state, not a cache. SETNX gives the same create-once semantics
// the derived-address account creation has on a ledger host.
type RedisAllowlist struct {
	client *RedisClient
	prefix string
}

func NewRedisAllowlist(client *RedisClient) *RedisAllowlist {
	return &RedisAllowlist{client: client, prefix: "allowlist:"}
}

func (r *RedisAllowlist) key(asset model.AssetID, principal model.Identity) string {
	return r.prefix + keys.AllowListEntry(asset, principal).String()
}

func (r *RedisAllowlist) Add(ctx context.Context, asset model.AssetID, principal model.Identity) error {
	ok, err := r.client.Client.SetNX(ctx, r.key(asset, principal), "1", 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrAlreadyExists
	}
	return nil
}

func (r *RedisAllowlist) Remove(ctx context.Context, asset model.AssetID, principal model.Identity) error {
	n, err := r.client.Client.Del(ctx, r.key(asset, principal)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RedisAllowlist) Contains(ctx context.Context, asset model.AssetID, principal model.Identity) (bool, error) {
	n, err := r.client.Client.Exists(ctx, r.key(asset, principal)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
