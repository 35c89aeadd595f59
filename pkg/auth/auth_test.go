package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doulacrm/backend/pkg/models"
)

func TestTokenRoundTrip(t *testing.T) {
	session := models.UserSession{
		ID:            "user-1",
		OrgID:         "org-default",
		Name:          "Ada",
		ProfileID:     "system_admin",
		IsSystemAdmin: true,
	}

	token, err := GenerateToken(session)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.User.ID)
	assert.Equal(t, "org-default", claims.User.OrgID)
	assert.True(t, claims.User.IsSystemAdmin)
}

func TestValidateToken_RejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token")
	assert.Error(t, err)

	_, err = ValidateToken("")
	assert.Error(t, err)
}

func TestValidateToken_RejectsTamperedToken(t *testing.T) {
	token, err := GenerateToken(models.UserSession{ID: "user-1", ProfileID: "standard_user"})
	require.NoError(t, err)

	tampered := token[:len(token)-4] + "AAAA"
	_, err = ValidateToken(tampered)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Sunflower42!")
	require.NoError(t, err)
	assert.NotEqual(t, "Sunflower42!", hash)

	assert.True(t, VerifyPassword("Sunflower42!", hash))
	assert.False(t, VerifyPassword("sunflower42!", hash))
	assert.False(t, VerifyPassword("", hash))
}

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Sunflower42", false},
		{"too short", "Ab1", true},
		{"no uppercase", "sunflower42", true},
		{"no lowercase", "SUNFLOWER42", true},
		{"no number", "Sunflower", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePasswordStrength(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("ada@doulacrm.local"))
	assert.True(t, IsValidEmail("  ada@doulacrm.local  "))
	assert.False(t, IsValidEmail("ada@"))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail(""))
}
