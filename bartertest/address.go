package bartertest

import (
	"crypto/rand"
	"testing"

	"github.com/iov-one/barter"
)

// ParseAddress takes an address in a human readable format and returns its
// binary representation. This function is a test helper that is using
// barter.ParseAddress function functionality.
func ParseAddress(t testing.TB, encodedAddress string) barter.Address {
	t.Helper()

	addr, err := barter.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}

// RandomAddr returns a valid random address generated on the fly.
func RandomAddr(t testing.TB) barter.Address {
	t.Helper()
	raw := make([]byte, barter.AddressLength)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("cannot generate a random address: %s", err)
	}
	a := barter.Address(raw)
	if err := a.Validate(); err != nil {
		t.Fatalf("generated address is not valid: %s", err)
	}
	return a
}
