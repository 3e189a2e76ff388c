package password

import (
	"github.com/smallbiznis/atelier/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is used when no provisioning settings are supplied.
const DefaultCost = 12

// Hasher turns plaintext passwords into storable hashes.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encoded string) bool
}

type bcryptHasher struct {
	settings *config.ProvisioningConfigHolder
}

// NewBcryptHasher reads the cost from settings on every call so a reloaded
// configuration applies to the next registration.
func NewBcryptHasher(settings *config.ProvisioningConfigHolder) Hasher {
	return &bcryptHasher{settings: settings}
}

func (h *bcryptHasher) Hash(plain string) (string, error) {
	return Hash(plain, h.cost())
}

func (h *bcryptHasher) Verify(plain, encoded string) bool {
	return Verify(plain, encoded)
}

func (h *bcryptHasher) cost() int {
	if h.settings == nil {
		return DefaultCost
	}
	return h.settings.Get().BcryptCost
}

// Hash returns the bcrypt hash of password at the given cost.
func Hash(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify checks whether a password matches the encoded bcrypt hash.
func Verify(password, encoded string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) == nil
}
