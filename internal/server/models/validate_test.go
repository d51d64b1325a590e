package models

import (
	"errors"
	"testing"

	"github.com/dmitrijs2005/walletkeeper/internal/common"
)

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var ve *common.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	return ve.Field
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "ok", in: "a@x.com", want: "a@x.com"},
		{name: "lowercased", in: "Alice@Example.COM", want: "alice@example.com"},
		{name: "trimmed", in: " a@x.com ", want: "a@x.com"},
		{name: "empty", in: "", wantErr: true},
		{name: "no at", in: "not-an-email", wantErr: true},
		{name: "no tld", in: "a@x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeEmail(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				if f := fieldOf(t, err); f != "email" {
					t.Fatalf("expected field %q, got %q", "email", f)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "ok", in: "alice123", want: "alice123"},
		{name: "lowercased", in: "Alice_123", want: "alice_123"},
		{name: "too short", in: "ab", wantErr: true},
		{name: "too long", in: "abcdefghijklmnopqrstu", wantErr: true},
		{name: "starts with digit", in: "1alice", wantErr: true},
		{name: "bad chars", in: "ali-ce", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeUsername(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				if f := fieldOf(t, err); f != "username" {
					t.Fatalf("expected field %q, got %q", "username", f)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "ok lowercase", in: "0x5fbdb2315678afecb367f032d93f642f64180aa3", want: "0x5fbdb2315678afecb367f032d93f642f64180aa3"},
		{name: "checksummed gets lowercased", in: "0x5FbDB2315678afecb367f032d93F642f64180aa3", want: "0x5fbdb2315678afecb367f032d93f642f64180aa3"},
		{name: "missing prefix", in: "5fbdb2315678afecb367f032d93f642f64180aa3", wantErr: true},
		{name: "too short", in: "0x5fbdb2", wantErr: true},
		{name: "non-hex", in: "0x5fbdb2315678afecb367f032d93f642f64180ag3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAddress(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{name: "ok", in: "Abc12345!"},
		{name: "too short", in: "Ab1!", wantErr: true},
		{name: "no uppercase", in: "abc12345!", wantErr: true},
		{name: "no lowercase", in: "ABC12345!", wantErr: true},
		{name: "no digit", in: "Abcdefgh!", wantErr: true},
		{name: "no special", in: "Abc12345", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.in)
			if tt.wantErr && err == nil {
				t.Fatalf("expected error for %q", tt.in)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr {
				if f := fieldOf(t, err); f != "password" {
					t.Fatalf("expected field %q, got %q", "password", f)
				}
			}
		})
	}
}
