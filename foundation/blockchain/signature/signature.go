// Package signature provides helper functions for handling the ledger
// hashing and miner identity needs.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// HashLength is the number of hex characters in a hash produced by Hash.
const HashLength = sha256.Size * 2

// =============================================================================

// Hash returns the lowercase hex sha256 of the parts concatenated in order.
func Hash(parts ...string) string {
	h := sha256.New()
	for _, part := range parts {
		h.Write([]byte(part))
	}

	return hex.EncodeToString(h.Sum(nil))
}

// IsHashSolved checks the hash to make sure it complies with the POW rules.
// We need to match a difficulty number of leading '0' characters. This is a
// text check, a difficulty of 0 is always solved.
func IsHashSolved(difficulty uint, hash string) bool {
	if difficulty > uint(len(hash)) {
		return false
	}

	return hash[:difficulty] == strings.Repeat("0", int(difficulty))
}

// =============================================================================

// MinerID returns the identity a miner signs blocks with. It's the
// Ethereum style address of the public key.
func MinerID(publicKey ecdsa.PublicKey) string {
	return crypto.PubkeyToAddress(publicKey).String()
}

// LoadMinerID reads the ECDSA private key at the specified path and returns
// the identity for it.
func LoadMinerID(path string) (string, error) {
	privateKey, err := crypto.LoadECDSA(path)
	if err != nil {
		return "", err
	}

	return MinerID(privateKey.PublicKey), nil
}

// GenerateKey creates a new private key and saves it at the specified path.
func GenerateKey(path string) (*ecdsa.PrivateKey, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}

	if err := crypto.SaveECDSA(path, privateKey); err != nil {
		return nil, err
	}

	return privateKey, nil
}
