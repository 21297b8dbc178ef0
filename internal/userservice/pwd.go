package userservice

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// passwordFromHash wraps a stored bcrypt hash.
func passwordFromHash(hash string) Password {
	return Password{hash: []byte(hash)}
}

// set hashes plain. The plain text is kept only for the current request.
func (p *Password) set(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return err
	}

	p.Plain = plain
	p.hash = hash

	return nil
}

// encoded returns the hash in its stored form.
func (p *Password) encoded() string {
	return string(p.hash)
}

// matches reports whether plain is the password behind the hash. A password
// without a hash, as loaded by reads that hide it, never matches.
func (p *Password) matches(plain string) (bool, error) {
	if len(p.hash) == 0 {
		return false, nil
	}

	err := bcrypt.CompareHashAndPassword(p.hash, []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
