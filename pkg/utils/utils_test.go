package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", "ledger-api", time.Hour)
	userID, tenantID := uuid.New(), uuid.New()

	token, err := m.GenerateAccessToken(userID, tenantID, "ops@example.com", []string{"admin"})
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, tenantID, claims.TenantID)
	assert.Equal(t, []string{"admin"}, claims.Roles)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("secret", "ledger-api", time.Hour)

	other := NewJWTManager("other-secret", "ledger-api", time.Hour)
	token, err := other.GenerateAccessToken(uuid.New(), uuid.New(), "", nil)
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err, "wrong signing key")

	token, err = m.GenerateAccessToken(uuid.New(), uuid.Nil, "", nil)
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err, "missing tenant")

	expired := NewJWTManager("secret", "ledger-api", -time.Minute)
	token, err = expired.GenerateAccessToken(uuid.New(), uuid.New(), "", nil)
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err, "expired")
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "al-noor-trading", Slugify("  Al Noor  Trading! "))
	assert.Equal(t, "acme-co", Slugify("Acme & Co"))
}

func TestGenerateReferenceNo(t *testing.T) {
	ref := GenerateReferenceNo("PAY")
	assert.True(t, strings.HasPrefix(ref, "PAY-"))
	assert.Len(t, ref, len("PAY-")+8)
	assert.NotEqual(t, ref, GenerateReferenceNo("PAY"))
}

func TestParseUUID(t *testing.T) {
	id := uuid.New()

	got, err := ParseUUID("  " + id.String() + "\n")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseUUID("not-a-uuid")
	assert.Error(t, err)
}
