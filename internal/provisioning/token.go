package provisioning

import (
	"crypto/sha256"
	"encoding/hex"
)

// tokenValid compares the submitted token against the hex digest of the
// shared secret, exact case-sensitive match. The credential is static across
// all devices and requests; replay protection is not part of the protocol.
func tokenValid(sharedSecret, token string) bool {
	sum := sha256.Sum256([]byte(sharedSecret))
	return hex.EncodeToString(sum[:]) == token
}
