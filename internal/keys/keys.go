// Package keys derives the deterministic addresses of state records.
//
// Every record lives at keccak256(namespace || asset [|| principal]) so an
// address is always recomputable from its logical key alone — never stored as
// an arbitrary pointer. Non-ledger backends use the address as a map key; a
// ledger host would substitute its native derivation scheme.
package keys

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/GoLaunchpad/launchgate/internal/model"
)

// Address is a derived record address.
type Address [32]byte

func (a Address) String() string {
	return hexutil.Encode(a[:])
}

// Record namespaces. These are part of the wire-level state layout; changing
// one orphans every record derived under it.
const (
	nsConfig    = "config"
	nsSale      = "sale"
	nsVault     = "vault"
	nsPolicy    = "policy"
	nsWhitelist = "whitelist"
)

func derive(namespace string, parts ...[]byte) Address {
	data := append([]byte(namespace), byte(0))
	for _, p := range parts {
		data = append(data, p...)
	}
	var addr Address
	copy(addr[:], crypto.Keccak256(data))
	return addr
}

// Config is the singleton global-config address.
func Config() Address {
	return derive(nsConfig)
}

// Sale addresses the per-asset sale record.
func Sale(asset model.AssetID) Address {
	return derive(nsSale, asset[:])
}

// Vault addresses the program-owned custody account holding the offered
// supply. The vault identity doubles as a ledger holder: no individual
// principal can ever collide with it because it is derived, not chosen.
func Vault(asset model.AssetID) Address {
	return derive(nsVault, asset[:])
}

// Policy addresses the per-asset transfer-policy record.
func Policy(asset model.AssetID) Address {
	return derive(nsPolicy, asset[:])
}

// AllowListEntry addresses the (asset, principal) membership marker.
func AllowListEntry(asset model.AssetID, principal model.Identity) Address {
	return derive(nsWhitelist, asset[:], principal[:])
}

// VaultHolder returns the vault address as a ledger holder identity.
func VaultHolder(asset model.AssetID) model.Identity {
	return model.Identity(Vault(asset))
}
