package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Identity 是一个不透明的固定宽度主体标识 (buyer/owner/sender)。
// The host runtime verifies signatures before our entry points run, so the
// gateway only ever sees identities as opaque 32-byte values.
type Identity [32]byte

// AssetID identifies a fungible or non-fungible token type. Same width and
// encoding as Identity; a distinct alias keeps call sites readable.
type AssetID = Identity

// PaymentAsset is the native payment currency. The ledger keys balance records
// by (asset, holder); the zero asset is the payment currency by convention.
var PaymentAsset = AssetID{}

func ParseIdentity(s string) (Identity, error) {
	var id Identity
	raw, err := hexutil.Decode(s)
	if err != nil {
		return id, fmt.Errorf("invalid identity %q: %w", s, err)
	}
	if len(raw) != len(id) {
		return id, fmt.Errorf("invalid identity %q: want %d bytes, got %d", s, len(id), len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

func (id Identity) String() string {
	return hexutil.Encode(id[:])
}

func (id Identity) IsZero() bool {
	return id == Identity{}
}

func (id Identity) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

func (id *Identity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseIdentity(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Value / Scan store identities as 0x-hex text so rows stay greppable in psql.
func (id Identity) Value() (driver.Value, error) {
	return id.String(), nil
}

func (id *Identity) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseIdentity(v)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	case []byte:
		parsed, err := ParseIdentity(string(v))
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Identity", src)
	}
}
