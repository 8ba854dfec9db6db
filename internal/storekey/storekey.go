// Package storekey builds the Redis key layout for sessions and revocation
// entries. Keys are constructed through validating constructors so a malformed
// jti cannot silently produce a key that misses every lookup.
package storekey

import "errors"

// ErrInvalidComponent is returned when a key component is empty, too long, or
// contains characters outside the allowed set.
var ErrInvalidComponent = errors.New("storekey: invalid key component")

const (
	sessionPrefix      = "gl:session:"
	accountIndexPrefix = "gl:session:acct:"
	revocationPrefix   = "gl:revoked:"

	maxComponentLen = 128
)

// Key is a validated store key. The zero value is invalid; obtain keys only
// through the constructors in this package.
type Key string

// Session returns the key holding the session record for the given refresh jti.
func Session(jti string) (Key, error) {
	if err := validate(jti); err != nil {
		return "", err
	}
	return Key(sessionPrefix + jti), nil
}

// AccountIndex returns the key of the set indexing session jtis by account.
func AccountIndex(accountID string) (Key, error) {
	if err := validate(accountID); err != nil {
		return "", err
	}
	return Key(accountIndexPrefix + accountID), nil
}

// AccountIndexPattern is the SCAN match pattern covering all account index keys.
func AccountIndexPattern() string {
	return accountIndexPrefix + "*"
}

// Revocation returns the key marking the given jti as revoked.
func Revocation(jti string) (Key, error) {
	if err := validate(jti); err != nil {
		return "", err
	}
	return Key(revocationPrefix + jti), nil
}

func validate(component string) error {
	if component == "" || len(component) > maxComponentLen {
		return ErrInvalidComponent
	}
	for i := 0; i < len(component); i++ {
		c := component[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_' || c == '.':
		default:
			return ErrInvalidComponent
		}
	}
	return nil
}
