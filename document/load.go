package document

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// Load reads the whole of r into a new document. NUL runes are dropped
// and hasNulls reports whether any were seen. Invalid UTF-8 becomes
// utf8.RuneError.
func Load(r io.Reader) (d *Document, hasNulls bool, err error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, false, fmt.Errorf("document load: %w", err)
	}
	text, hasNulls := torunes(b)
	d = &Document{text: text}
	d.reindex(0)
	return d, hasNulls, nil
}

// LoadFile is Load on the named file.
func LoadFile(name string) (*Document, bool, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()
	return Load(f)
}

func torunes(p []byte) (r []rune, nulls bool) {
	r = make([]rune, 0, utf8.RuneCount(p))
	for len(p) > 0 {
		c, w := rune(p[0]), 1
		if c >= utf8.RuneSelf {
			c, w = utf8.DecodeRune(p)
		}
		p = p[w:]
		if c == 0 {
			nulls = true
			continue
		}
		r = append(r, c)
	}
	return r, nulls
}
