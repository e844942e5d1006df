package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignerRoundTrip(t *testing.T) {
	signer := NewSigner([]byte("secret"))
	now := time.Now()

	token, err := signer.Sign(SessionClaims{SessionID: "sid-1", UserID: 4, Fingerprint: "fp"}, now, now.Add(time.Minute))
	require.NoError(t, err)

	claims, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", claims.SessionID)
	assert.Equal(t, uint(4), claims.UserID)
	assert.Equal(t, "fp", claims.Fingerprint)
}

func TestSignerRejectsForeignAndExpiredTokens(t *testing.T) {
	now := time.Now()

	foreign, err := NewSigner([]byte("other")).Sign(SessionClaims{SessionID: "sid"}, now, now.Add(time.Minute))
	require.NoError(t, err)
	_, err = NewSigner([]byte("secret")).Parse(foreign)
	assert.Error(t, err)

	expired, err := NewSigner([]byte("secret")).Sign(SessionClaims{SessionID: "sid"}, now.Add(-2*time.Hour), now.Add(-time.Hour))
	require.NoError(t, err)
	_, err = NewSigner([]byte("secret")).Parse(expired)
	assert.Error(t, err)

	_, err = NewSigner([]byte("secret")).Parse("not-a-token")
	assert.Error(t, err)
}

func TestFingerprintDependsOnClient(t *testing.T) {
	a := Client{UserAgent: "Firefox", IP: "10.0.0.1"}
	b := Client{UserAgent: "Firefox", IP: "10.0.0.2"}
	c := Client{UserAgent: "Chrome", IP: "10.0.0.1"}

	assert.Equal(t, a.Fingerprint(), Client{UserAgent: "Firefox", IP: "10.0.0.1"}.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
	assert.Len(t, a.Fingerprint(), 64)
}
