package crypto

import (
	"encoding/base64"
	"errors"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	enc, err := NewCredentialEncryptor("a-test-passphrase")
	if err != nil {
		t.Fatalf("NewCredentialEncryptor failed: %v", err)
	}

	ciphertext, err := enc.Encrypt("hunter22")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if ciphertext == "hunter22" {
		t.Fatal("expected ciphertext to differ from plaintext")
	}

	plaintext, err := enc.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if plaintext != "hunter22" {
		t.Errorf("expected round trip, got %q", plaintext)
	}
}

func TestEncryptProducesUniqueCiphertexts(t *testing.T) {
	enc, _ := NewCredentialEncryptor("a-test-passphrase")

	first, _ := enc.Encrypt("secret")
	second, _ := enc.Encrypt("secret")
	if first == second {
		t.Error("expected unique nonce per encryption")
	}
}

func TestDecryptWithWrongKey(t *testing.T) {
	enc, _ := NewCredentialEncryptor("key-one")
	other, _ := NewCredentialEncryptor("key-two")

	ciphertext, _ := enc.Encrypt("secret")
	_, err := other.Decrypt(ciphertext)
	if !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestDecryptGarbage(t *testing.T) {
	enc, _ := NewCredentialEncryptor("a-test-passphrase")

	if _, err := enc.Decrypt("not-base64!!!"); err == nil {
		t.Error("expected error for invalid ciphertext")
	}
}

func TestBase64KeyAccepted(t *testing.T) {
	key := base64.StdEncoding.EncodeToString(make([]byte, 32))
	enc, err := NewCredentialEncryptor(key)
	if err != nil {
		t.Fatalf("expected base64 32-byte key accepted: %v", err)
	}

	ciphertext, _ := enc.Encrypt("x")
	if plaintext, err := enc.Decrypt(ciphertext); err != nil || plaintext != "x" {
		t.Errorf("round trip failed: %q, %v", plaintext, err)
	}
}

func TestEmptyKeyRejected(t *testing.T) {
	if _, err := NewCredentialEncryptor(""); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
}
