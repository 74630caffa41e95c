package cache

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Hasher one-way hashes credentials before they touch a cache. The salt is
// generated per process, so cached hashes are useless outside it and a
// restart invalidates everything at once.
type Hasher struct {
	salt []byte
}

func NewHasher() *Hasher {
	salt := make([]byte, 32)
	if _, err := rand.Read(salt); err != nil {
		panic("cache: cannot source salt: " + err.Error())
	}
	return &Hasher{salt: salt}
}

func (h *Hasher) Hash(secret string) string {
	sum := sha256.Sum256(append([]byte(secret), h.salt...))
	return hex.EncodeToString(sum[:])
}

// Compare checks a fresh secret against a stored hash in constant time.
func (h *Hasher) Compare(secret, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(h.Hash(secret)), []byte(storedHash)) == 1
}
