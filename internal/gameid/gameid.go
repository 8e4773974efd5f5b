// Package gameid generates sortable game identifiers: a UUIDv7 rendered as a
// 26 character Crockford base32 string (the TypeID suffix encoding).
package gameid

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Crockford's base32, lower case as TypeID uses it.
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length of an encoded id.
const Length = 26

// Generator creates ids, optionally drawing the random bits from a fixed reader.
type Generator struct {
	rand io.Reader
}

// NewGenerator creates a generator. A nil reader uses crypto randomness.
func NewGenerator(r io.Reader) *Generator {
	return &Generator{rand: r}
}

// Generate returns a new id using crypto randomness.
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate returns a new id. It falls back to crypto randomness if the
// configured reader fails.
func (g *Generator) Generate() string {
	if g.rand != nil {
		if id, err := uuid.NewV7FromReader(g.rand); err == nil {
			return Encode(id)
		}
	}
	return Encode(uuid.Must(uuid.NewV7()))
}

// Encode renders a UUID as 26 base32 characters. The 128 bits are treated as
// a 130 bit number with two leading zero bits, so the first character is
// always in 0-7.
func Encode(id uuid.UUID) string {
	var b strings.Builder
	b.Grow(Length)
	for i := 0; i < Length; i++ {
		var v byte
		for j := 0; j < 5; j++ {
			v = v<<1 | bit(id, i*5+j-2)
		}
		b.WriteByte(alphabet[v])
	}
	return b.String()
}

// Decode parses an encoded id back into a UUID.
func Decode(s string) (uuid.UUID, error) {
	var id uuid.UUID
	if err := Validate(s); err != nil {
		return id, err
	}
	for i := 0; i < Length; i++ {
		v := byte(strings.IndexByte(alphabet, s[i]))
		for j := 0; j < 5; j++ {
			k := i*5 + j - 2
			if k < 0 {
				continue
			}
			if v&(1<<(4-j)) != 0 {
				id[k/8] |= 1 << (7 - k%8)
			}
		}
	}
	return id, nil
}

// bit returns bit k (0 = most significant) of id, or 0 for padding positions.
func bit(id uuid.UUID, k int) byte {
	if k < 0 {
		return 0
	}
	return (id[k/8] >> (7 - k%8)) & 1
}

// Validate checks that id is 26 characters of the base32 alphabet with a
// leading character no greater than '7'.
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("game ID must be exactly %d characters, got %d", Length, len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("game ID first character must be 0-7, got %c", id[0])
	}
	for i := 0; i < len(id); i++ {
		if strings.IndexByte(alphabet, id[i]) < 0 {
			return fmt.Errorf("invalid character %c at position %d", id[i], i)
		}
	}
	return nil
}
