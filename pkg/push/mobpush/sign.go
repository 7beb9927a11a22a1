package mobpush

import (
	"crypto/md5"
	"encoding/hex"
)

// Sign returns the hex md5 of payload followed by secret, the integrity token
// the gateway expects in the sign header.
func Sign(payload []byte, secret string) string {
	hash := md5.New()
	_, _ = hash.Write(payload)
	_, _ = hash.Write([]byte(secret))

	return hex.EncodeToString(hash.Sum(nil))
}
