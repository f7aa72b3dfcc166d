// Package id generates collision-resistant identifiers.
//
// Identifiers are random UUIDv4 bytes rendered as lowercase unpadded
// base32, which keeps them short, URL-safe, and case-insensitive.
package id

import (
	crand "crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID returns a 26-character lowercase identifier.
func NewID() (string, error) {
	var b [16]byte
	if _, err := crand.Read(b[:]); err != nil {
		return "", fmt.Errorf("read random id: %w", err)
	}
	b[6] = (b[6] & 0x0F) | 0x40
	b[8] = (b[8] & 0x3F) | 0x80
	return strings.ToLower(encoding.EncodeToString(b[:])), nil
}
