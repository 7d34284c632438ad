package serial

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
)

// codeBytes is the entropy per code. 16 bytes keeps the birthday-collision
// probability far below any realistic order volume; uniqueness is not
// re-checked against issued codes, the database unique index is the backstop.
const codeBytes = 16

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Generate returns n serial codes of the form PREFIX-XXXXXXXXXXXXXXXXXXXXXXXXXX
// drawn from the platform randomness source.
func Generate(prefix string, n int) ([]string, error) {
	if prefix == "" {
		return nil, fmt.Errorf("serial prefix is required")
	}
	if n <= 0 {
		return nil, fmt.Errorf("serial count must be positive, got %d", n)
	}

	codes := make([]string, 0, n)
	buf := make([]byte, codeBytes)
	for i := 0; i < n; i++ {
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("reading randomness: %w", err)
		}
		codes = append(codes, prefix+"-"+strings.ToUpper(encoding.EncodeToString(buf)))
	}
	return codes, nil
}
