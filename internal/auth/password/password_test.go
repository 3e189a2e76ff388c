package password

import (
	"strings"
	"testing"
	"time"

	"github.com/smallbiznis/atelier/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	hashed, err := Hash("Secreto1!", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "Secreto1!", hashed)
	assert.True(t, Verify("Secreto1!", hashed))
	assert.False(t, Verify("secreto1!", hashed))
	assert.False(t, Verify("Secreto1!", "not-a-hash"))
}

func TestHasherUsesConfiguredCost(t *testing.T) {
	cfg := config.DefaultProvisioningConfig()
	cfg.BcryptCost = 10
	cfg.Timeout = time.Second
	h := NewBcryptHasher(config.NewStaticProvisioningConfig(cfg))

	hashed, err := h.Hash("Secreto1!")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hashed))
	require.NoError(t, err)
	assert.Equal(t, 10, cost)
	assert.True(t, h.Verify("Secreto1!", hashed))
}

func TestHashRejectsOverlongPassword(t *testing.T) {
	_, err := Hash(strings.Repeat("a", 73), bcrypt.MinCost)
	assert.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)
}
