package crypto

import "testing"

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := NewBcryptHasher()

	digest, err := h.Hash("Secret123")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if digest == "Secret123" {
		t.Fatalf("digest equals plaintext")
	}

	if !h.Verify("Secret123", digest) {
		t.Fatalf("correct password rejected")
	}
	if h.Verify("Secret124", digest) {
		t.Fatalf("wrong password accepted")
	}
	if h.Verify("Secret123", "not-a-bcrypt-digest") {
		t.Fatalf("garbage digest accepted")
	}
}

func TestBcryptHasher_SaltedDigests(t *testing.T) {
	h := NewBcryptHasher()

	a, err := h.Hash("Secret123")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	b, err := h.Hash("Secret123")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if a == b {
		t.Fatalf("two digests of the same password must differ")
	}
}
