package kafkafile

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"
)

// ChecksumReader computes the md5 of everything read through it.
type ChecksumReader struct {
	r    io.Reader
	hash hash.Hash
	n    int64
}

// NewChecksumReader wraps r.
func NewChecksumReader(r io.Reader) *ChecksumReader {
	h := md5.New()
	return &ChecksumReader{r: io.TeeReader(r, h), hash: h}
}

func (c *ChecksumReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Sum returns the hex md5 of the bytes read so far.
func (c *ChecksumReader) Sum() string {
	return hex.EncodeToString(c.hash.Sum(nil))
}

// Size returns the number of bytes read so far.
func (c *ChecksumReader) Size() int64 {
	return c.n
}

// Verify returns an error wrapping ErrChecksumMismatch unless the bytes read
// so far hash to expected.
func (c *ChecksumReader) Verify(expected string) error {
	if got := c.Sum(); !strings.EqualFold(got, expected) {
		return fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, expected, got)
	}
	return nil
}

// Md5Hex returns the hex md5 of data.
func Md5Hex(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
