package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

// Client identifies the browser a session was issued to.
type Client struct {
	UserAgent string
	IP        string
}

// Fingerprint changes whenever the user agent or address does, which is
// what invalidates a stolen session cookie.
func (c Client) Fingerprint() string {
	sum := sha256.Sum256([]byte(c.IP + "|" + c.UserAgent))
	return hex.EncodeToString(sum[:])
}
