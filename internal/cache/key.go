// Package cache persists API responses and resolved titles on disk.
package cache

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// MaxKeyLen is the longest escaped key stored verbatim. Longer keys are
// shortened to a prefix plus a digest to stay under filesystem name limits.
const MaxKeyLen = 200

// keyPrefixLen is how much of an over-long key survives before the digest.
const keyPrefixLen = 120

// digestSep separates the prefix from the digest. EncodeKey always escapes
// '~', so it only ever appears in shortened keys.
const digestSep = '~'

const hexDigits = "0123456789ABCDEF"

// EncodeKey turns a URL into a filesystem-safe cache key. Every byte outside
// [a-z0-9._-] is percent-encoded, which keeps distinct URLs distinct even on
// case-insensitive filesystems. Escapes always use uppercase hex.
func EncodeKey(url string) string {
	var b strings.Builder
	b.Grow(len(url))
	for i := 0; i < len(url); i++ {
		c := url[i]
		if isSafe(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0F])
	}

	key := b.String()
	if len(key) <= MaxKeyLen {
		return key
	}
	sum := blake2b.Sum256([]byte(url))
	return key[:keyPrefixLen] + string(digestSep) + hex.EncodeToString(sum[:])
}

// DecodeKey reverses EncodeKey. Shortened keys cannot be reversed and
// return an error.
func DecodeKey(key string) (string, error) {
	if strings.IndexByte(key, digestSep) >= 0 {
		return "", fmt.Errorf("key %q is a digest and cannot be decoded", key)
	}
	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+2 >= len(key) {
			return "", fmt.Errorf("truncated escape in key %q", key)
		}
		hi, ok1 := unhex(key[i+1])
		lo, ok2 := unhex(key[i+2])
		if !ok1 || !ok2 {
			return "", fmt.Errorf("invalid escape %q in key", key[i:i+3])
		}
		b.WriteByte(hi<<4 | lo)
		i += 2
	}
	return b.String(), nil
}

func isSafe(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	case c == '.' || c == '_' || c == '-':
		return true
	}
	return false
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
