package auth

import (
	"testing"

	"agriconnect/config"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndCheck(t *testing.T) {
	hasher := NewBcryptHasher(&config.Config{})

	code := "482913"
	hash, err := hasher.Hash(code)
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, code, hash)

	assert.True(t, hasher.Check(code, hash))
	assert.False(t, hasher.Check("482914", hash))
	assert.False(t, hasher.Check("", hash))
	assert.False(t, hasher.Check(code, "invalid_hash"))
}

func TestBcryptHasher_HashesAreSalted(t *testing.T) {
	hasher := NewBcryptHasher(&config.Config{})

	first, err := hasher.Hash("123456")
	assert.NoError(t, err)
	second, err := hasher.Hash("123456")
	assert.NoError(t, err)

	// Same code, different salts, different hashes.
	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Check("123456", first))
	assert.True(t, hasher.Check("123456", second))
}

func TestBcryptHasher_ConfiguredCost(t *testing.T) {
	cfg := &config.Config{Auth: &config.AuthConfig{BcryptCost: 6}}
	hasher := NewBcryptHasher(cfg)

	hash, err := hasher.Hash("004217")
	assert.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	assert.NoError(t, err)
	assert.Equal(t, 6, cost)
}

func TestBcryptHasher_CostOutOfRangeFallsBack(t *testing.T) {
	cfg := &config.Config{Auth: &config.AuthConfig{BcryptCost: 99}}
	hasher := NewBcryptHasher(cfg)

	hash, err := hasher.Hash("771250")
	assert.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	assert.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
