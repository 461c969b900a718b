package security

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	const password = "correct horse battery"

	encoded, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !strings.HasPrefix(encoded, "argon2id$v=19$") {
		t.Fatalf("unexpected hash format: %q", encoded)
	}

	ok, err := VerifyPassword(password, encoded)
	if err != nil {
		t.Fatalf("VerifyPassword failed: %v", err)
	}
	if !ok {
		t.Error("correct password did not verify")
	}

	ok, err = VerifyPassword("wrong password", encoded)
	if err != nil {
		t.Fatalf("VerifyPassword failed: %v", err)
	}
	if ok {
		t.Error("wrong password verified")
	}
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	first, err := HashPassword("same input")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	second, err := HashPassword("same input")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password must differ")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"wrong segment count", "argon2id$v=19$m=65536,t=3,p=4$salt"},
		{"foreign variant", "bcrypt$v=19$m=65536,t=3,p=4$c2FsdHNhbHQ$aGFzaGhhc2hoYXNoaGFzaA"},
		{"bad parameters", "argon2id$v=19$m=what$c2FsdHNhbHQ$aGFzaGhhc2hoYXNoaGFzaA"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := VerifyPassword("anything", tc.encoded)
			if ok {
				t.Error("malformed hash verified")
			}
			if tc.encoded != "" && err == nil {
				t.Error("expected a decode error")
			}
		})
	}
}

func TestConfigureArgon2(t *testing.T) {
	t.Cleanup(func() {
		if err := ConfigureArgon2(DefaultArgon2Config()); err != nil {
			t.Fatalf("restore default config: %v", err)
		}
	})

	valid := Argon2Config{Memory: 16 * 1024, Iterations: 2, Parallelism: 2, SaltLength: 16, KeyLength: 32}
	if err := ConfigureArgon2(valid); err != nil {
		t.Fatalf("ConfigureArgon2 rejected a valid config: %v", err)
	}
	if got := CurrentArgon2Config(); got != valid {
		t.Errorf("active config = %+v, want %+v", got, valid)
	}

	invalid := []Argon2Config{
		{Memory: 1024, Iterations: 2, Parallelism: 2, SaltLength: 16, KeyLength: 32},
		{Memory: 16 * 1024, Iterations: 0, Parallelism: 2, SaltLength: 16, KeyLength: 32},
		{Memory: 16 * 1024, Iterations: 2, Parallelism: 0, SaltLength: 16, KeyLength: 32},
		{Memory: 16 * 1024, Iterations: 2, Parallelism: 2, SaltLength: 4, KeyLength: 32},
		{Memory: 16 * 1024, Iterations: 2, Parallelism: 2, SaltLength: 16, KeyLength: 8},
	}
	for _, cfg := range invalid {
		if err := ConfigureArgon2(cfg); err == nil {
			t.Errorf("ConfigureArgon2 accepted invalid config %+v", cfg)
		}
	}
	if got := CurrentArgon2Config(); got != valid {
		t.Error("a rejected config must not replace the active one")
	}
}
