package util

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// NewCommentID returns a random comment ID: the decimal form of a
// 10-digit positive integer, matching the w:id values Word generates.
func NewCommentID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	const lo, hi = uint64(1_000_000_000), uint64(9_999_999_999)
	n := binary.BigEndian.Uint64(b[:])
	return strconv.FormatUint(lo+n%(hi-lo+1), 10)
}

// NewHexID returns an 8-uppercase-hex identifier, used for paraId,
// textId and durableId values.
func NewHexID() string {
	u := uuid.New()
	return strings.ToUpper(hex.EncodeToString(u[:4]))
}
