// Package secret seals credentials before they reach the settings store.
package secret

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	sealedPrefix = "sb1:"
	nonceSize    = 24
)

var (
	ErrNoKey     = errors.New("secret: value is sealed but no key is configured")
	ErrMalformed = errors.New("secret: sealed value is malformed")
	ErrTampered  = errors.New("secret: sealed value failed authentication")
)

// Box seals values with NaCl secretbox. A nil *Box stores values in the clear.
type Box struct {
	key [32]byte
}

// NewBox derives a box key from passphrase. An empty passphrase yields nil.
func NewBox(passphrase string) *Box {
	if passphrase == "" {
		return nil
	}
	return &Box{key: sha256.Sum256([]byte(passphrase))}
}

func (b *Box) Seal(plain string) (string, error) {
	if b == nil {
		return plain, nil
	}
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", err
	}
	sealed := secretbox.Seal(nonce[:], []byte(plain), &nonce, &b.key)
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal. Values that were stored in the clear are returned as is.
func (b *Box) Open(value string) (string, error) {
	if !strings.HasPrefix(value, sealedPrefix) {
		return value, nil
	}
	if b == nil {
		return "", ErrNoKey
	}
	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrMalformed
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &b.key)
	if !ok {
		return "", ErrTampered
	}
	return string(plain), nil
}
