package crypto

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"
)

func TestPrivateKeyRoundTrip(t *testing.T) {
	t.Parallel()

	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	restored, err := PrivateKeyFromBytes(key.Bytes())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !bytes.Equal(key.Bytes(), restored.Bytes()) {
		t.Fatalf("restored key differs")
	}
	if key.PubKey().Address().String() != restored.PubKey().Address().String() {
		t.Fatalf("restored key derives a different address")
	}
}

func TestPrivateKeyFromHex(t *testing.T) {
	t.Parallel()

	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	encoded := hex.EncodeToString(key.Bytes())

	for _, input := range []string{encoded, "0x" + encoded, "  " + encoded + "\n"} {
		parsed, err := PrivateKeyFromHex(input)
		if err != nil {
			t.Fatalf("PrivateKeyFromHex(%q): %v", input, err)
		}
		if !bytes.Equal(parsed.Bytes(), key.Bytes()) {
			t.Fatalf("PrivateKeyFromHex(%q) parsed a different key", input)
		}
	}

	if _, err := PrivateKeyFromHex("not-hex"); err == nil {
		t.Fatalf("expected error for invalid hex")
	}
}

func TestAddressEncoding(t *testing.T) {
	t.Parallel()

	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	addr := key.PubKey().Address()
	encoded := addr.String()
	if !strings.HasPrefix(encoded, string(CreekPrefix)) {
		t.Fatalf("address %q lacks prefix %q", encoded, CreekPrefix)
	}
	decoded, err := DecodeAddress(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(decoded.Bytes(), addr.Bytes()) {
		t.Fatalf("decoded address differs")
	}
	if short := addr.Short(); len(short) >= len(encoded) {
		t.Fatalf("Short() should abbreviate, got %q", short)
	}
}

func TestSignRequires32ByteDigest(t *testing.T) {
	t.Parallel()

	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := key.Sign(make([]byte, 16)); err == nil {
		t.Fatalf("expected error for short digest")
	}
	sig, err := key.Sign(make([]byte, 32))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if len(sig) != 65 {
		t.Fatalf("signature length = %d, want 65", len(sig))
	}
}
