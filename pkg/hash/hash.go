// Package hash abstracts the one-way password hash capability so the core
// is testable without paying bcrypt cost.
package hash

import "golang.org/x/crypto/bcrypt"

// Hasher hashes and verifies passwords.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(hashed, password string) bool
}

// Bcrypt is the production Hasher.
type Bcrypt struct {
	Cost int
}

// NewBcrypt returns a Bcrypt hasher with the default cost.
func NewBcrypt() *Bcrypt {
	return &Bcrypt{Cost: bcrypt.DefaultCost}
}

func (b *Bcrypt) Hash(password string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(password), b.Cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (b *Bcrypt) Verify(hashed, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}
