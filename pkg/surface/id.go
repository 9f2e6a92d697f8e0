package surface

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// DerivedID mints a deterministic id for an entity produced from another:
// the base id, the derivation kind, and a short digest of the payload.
// Equal inputs always yield the same id, so re-running a prep pipeline
// over unchanged input is idempotent.
func DerivedID(base, kind string, payload any) string {
	h := sha256.New()
	h.Write([]byte(base))
	h.Write([]byte{0})
	h.Write([]byte(kind))
	h.Write([]byte{0})
	if payload != nil {
		// Marshal errors only occur for unsupported types; the digest then
		// covers just base and kind, which is still deterministic.
		if data, err := json.Marshal(payload); err == nil {
			h.Write(data)
		}
	}
	return fmt.Sprintf("%s:%s:%x", base, kind, h.Sum(nil)[:6])
}
