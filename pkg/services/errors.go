package services

import (
	"errors"
	"fmt"

	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/apperrors"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/crypto"
)

// apperrorsCredentials maps decryption failures onto the stable sentinel so
// handlers can report "re-enter your password" instead of a crypto error.
func apperrorsCredentials(err error) error {
	if errors.Is(err, crypto.ErrDecryptionFailed) {
		return fmt.Errorf("%w: %v", apperrors.ErrCredentialsKeyMismatch, err)
	}
	return err
}
