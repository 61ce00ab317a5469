package utils

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func testHasher() *BcryptHasher {
	return NewBcryptHasher(bcrypt.MinCost)
}

func TestBcryptHasher_Hash(t *testing.T) {
	password := "testpassword123"

	hash, err := testHasher().Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if hash == "" {
		t.Error("Hash() returned empty string")
	}

	if hash == password {
		t.Error("Hash() should not return plaintext password")
	}

	if len(hash) < 50 {
		t.Errorf("hash seems too short: %d chars", len(hash))
	}
}

func TestBcryptHasher_DifferentHashes(t *testing.T) {
	h := testHasher()
	hash1, _ := h.Hash("testpassword")
	hash2, _ := h.Hash("testpassword")

	if hash1 == hash2 {
		t.Error("same password should produce different hashes (due to salt)")
	}
}

func TestBcryptHasher_Matches(t *testing.T) {
	h := testHasher()
	hash, _ := h.Hash("correctpassword")

	tests := []struct {
		name     string
		password string
		expected bool
	}{
		{"correct password", "correctpassword", true},
		{"wrong password", "wrongpassword", false},
		{"empty password", "", false},
		{"similar password", "correctpassword1", false},
		{"case sensitive", "CorrectPassword", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := h.Matches(tt.password, hash)
			if result != tt.expected {
				t.Errorf("Matches(%q) = %v, expected %v", tt.password, result, tt.expected)
			}
		})
	}
}

func TestBcryptHasher_InvalidHash(t *testing.T) {
	h := testHasher()
	if h.Matches("password", "invalid_hash") {
		t.Error("Matches should return false for invalid hash")
	}
	if h.Matches("password", "") {
		t.Error("Matches should return false for empty hash")
	}
}

func TestNewBcryptHasher_CostOutOfRange(t *testing.T) {
	if got := NewBcryptHasher(0).cost; got != bcrypt.DefaultCost {
		t.Errorf("cost = %d, expected default %d", got, bcrypt.DefaultCost)
	}
	if got := NewBcryptHasher(99).cost; got != bcrypt.DefaultCost {
		t.Errorf("cost = %d, expected default %d", got, bcrypt.DefaultCost)
	}
}
