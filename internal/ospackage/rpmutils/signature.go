package rpmutils

import (
	"errors"
	"fmt"
	"io"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// ErrSignatureInvalid is returned when repository metadata does not carry
// a valid signature from the configured key.
var ErrSignatureInvalid = errors.New("invalid repository signature")

// VerifyDetachedSignature checks an armored detached signature of signed
// against the armored public key(s) in key.
func VerifyDetachedSignature(key, signed, signature io.Reader) error {
	keyring, err := openpgp.ReadArmoredKeyRing(key)
	if err != nil {
		return fmt.Errorf("read GPG key: %w", err)
	}
	if _, err := openpgp.CheckArmoredDetachedSignature(keyring, signed, signature, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
	return nil
}
