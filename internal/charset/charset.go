// Package charset resolves encoding names and wraps readers and writers so
// the converter can read and write text in encodings other than UTF-8.
package charset

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnknownEncoding is returned for names that are not registered IANA
// charsets or that have no implementation.
var ErrUnknownEncoding = errors.New("unknown encoding")

// Charset is a resolved encoding.
type Charset struct {
	// Name is the canonical IANA name, e.g. "UTF-8" or "ISO-8859-1".
	Name string

	enc encoding.Encoding
}

// Lookup resolves an encoding name such as "utf-8", "latin1" or
// "windows-1252". An empty name means UTF-8.
func Lookup(name string) (*Charset, error) {
	if strings.TrimSpace(name) == "" {
		name = "UTF-8"
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	if enc == nil {
		return nil, fmt.Errorf("%w: %q is not supported", ErrUnknownEncoding, name)
	}

	canonical, err := ianaindex.MIME.Name(enc)
	if err != nil || canonical == "" {
		if canonical, err = ianaindex.IANA.Name(enc); err != nil || canonical == "" {
			canonical = strings.ToUpper(name)
		}
	}

	return &Charset{Name: canonical, enc: enc}, nil
}

// IsUTF8 reports whether no transcoding is needed.
func (c *Charset) IsUTF8() bool {
	return c.Name == "UTF-8"
}

// CanEncode reports whether s can be written in the charset without
// character references. Element names must pass this; text need not.
func (c *Charset) CanEncode(s string) bool {
	if c.IsUTF8() {
		return true
	}
	_, err := c.enc.NewEncoder().String(s)
	return err == nil
}

// NewReader decodes r into UTF-8. For UTF-8 input a leading byte order mark
// is removed.
func (c *Charset) NewReader(r io.Reader) io.Reader {
	if c.IsUTF8() {
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	}
	return transform.NewReader(r, c.enc.NewDecoder())
}

// NewWriter encodes UTF-8 written to it into the charset. Characters the
// charset cannot represent are written as numeric character references,
// which keeps XML output well-formed. The caller must Close the returned
// writer to flush it; closing does not close w.
func (c *Charset) NewWriter(w io.Writer) io.WriteCloser {
	if c.IsUTF8() {
		return nopCloser{w}
	}
	return transform.NewWriter(w, encoding.HTMLEscapeUnsupported(c.enc.NewEncoder()))
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
