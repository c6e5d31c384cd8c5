package util

import (
	"bytes"
	"strings"
	"testing"
)

func TestHashSecretRoundTrip(t *testing.T) {
	stored, err := HashSecret("open-sesame")
	if err != nil {
		t.Fatalf("HashSecret: %v", err)
	}
	if !strings.Contains(stored, "$") {
		t.Errorf("digest %q missing salt separator", stored)
	}

	if !CheckSecret("open-sesame", stored) {
		t.Error("correct secret rejected")
	}
	if CheckSecret("wrong", stored) {
		t.Error("wrong secret accepted")
	}
	if CheckSecret("", stored) {
		t.Error("empty secret accepted")
	}
	if CheckSecret("open-sesame", "garbage") {
		t.Error("malformed digest accepted")
	}
}

func TestHashSecretSaltsDiffer(t *testing.T) {
	a, err := HashSecret("same-secret")
	if err != nil {
		t.Fatal(err)
	}
	b, err := HashSecret("same-secret")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two digests of the same secret are identical, salt not applied")
	}
	if !CheckSecret("same-secret", a) || !CheckSecret("same-secret", b) {
		t.Error("digest failed verification")
	}
}

func TestHashSecretEmpty(t *testing.T) {
	if _, err := HashSecret(""); err == nil {
		t.Error("empty secret accepted")
	}
}

func TestEncryptDecryptAES(t *testing.T) {
	key := "backup-key-whatever-length"
	plaintext := []byte(`{"meetings":[],"participants":[]}`)

	sealed, err := EncryptAES(key, plaintext)
	if err != nil {
		t.Fatalf("EncryptAES: %v", err)
	}
	if bytes.Contains(sealed, plaintext) {
		t.Error("ciphertext contains plaintext")
	}

	opened, err := DecryptAES(key, sealed)
	if err != nil {
		t.Fatalf("DecryptAES: %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Errorf("round trip = %q, want %q", opened, plaintext)
	}
}

func TestDecryptAESWrongKey(t *testing.T) {
	sealed, err := EncryptAES("right-key", []byte("payload"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecryptAES("wrong-key", sealed); err == nil {
		t.Error("wrong key decrypted successfully")
	}
}

func TestDecryptAESTruncated(t *testing.T) {
	if _, err := DecryptAES("key", []byte{1, 2, 3}); err == nil {
		t.Error("truncated input decrypted successfully")
	}
}

func TestEncryptAESNonceVaries(t *testing.T) {
	a, err := EncryptAES("key", []byte("same"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := EncryptAES("key", []byte("same"))
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a, b) {
		t.Error("two encryptions of the same plaintext are identical")
	}
}
