package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GoLaunchpad/launchgate/internal/model"
)

func TestAddressesAreDeterministic(t *testing.T) {
	asset := model.AssetID{0xaa}
	principal := model.Identity{0xbb}

	assert.Equal(t, Sale(asset), Sale(asset))
	assert.Equal(t, AllowListEntry(asset, principal), AllowListEntry(asset, principal))
	assert.Equal(t, Config(), Config())
}

func TestNamespacesDoNotCollide(t *testing.T) {
	asset := model.AssetID{0xaa}

	seen := map[Address]string{
		Config():      "config",
		Sale(asset):   "sale",
		Vault(asset):  "vault",
		Policy(asset): "policy",
	}
	assert.Len(t, seen, 4)
}

func TestDistinctKeysDistinctAddresses(t *testing.T) {
	a := model.AssetID{0x01}
	b := model.AssetID{0x02}
	assert.NotEqual(t, Sale(a), Sale(b))

	p := model.Identity{0x01}
	q := model.Identity{0x02}
	assert.NotEqual(t, AllowListEntry(a, p), AllowListEntry(a, q))
	assert.NotEqual(t, AllowListEntry(a, p), AllowListEntry(b, p))
}

func TestVaultHolderNeverZero(t *testing.T) {
	// The zero identity is the payment currency; a vault holder landing there
	// would swallow payment balances.
	holder := VaultHolder(model.AssetID{})
	assert.False(t, holder.IsZero())
}
