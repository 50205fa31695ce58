package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParseRoundTrip(t *testing.T) {
	m := NewManager("0123456789abcdef0123456789abcdef", 3600, "crmhub")
	token, err := m.Generate(42, 7, "jti-1")
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, int64(7), claims.TenantID)
	assert.Equal(t, "jti-1", claims.JTI)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	m1 := NewManager("0123456789abcdef0123456789abcdef", 3600, "crmhub")
	m2 := NewManager("ffffffffffffffffffffffffffffffff", 3600, "crmhub")
	token, err := m1.Generate(1, 1, "j")
	require.NoError(t, err)
	_, err = m2.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	m := NewManager("0123456789abcdef0123456789abcdef", 3600, "crmhub")
	_, err := m.Parse("not-a-token")
	assert.Error(t, err)
}
