// Package encode renders result rows as tab-delimited output lines.
//
// A line is
//
//	server '\t' [database '\t'] field_1 '\t' ... field_k '\n'
//
// NULL renders as the two characters `\N`. With escaping enabled, newline,
// tab and NUL bytes inside a field become `\n`, `\t` and `\0`; every other
// byte, a backslash included, is copied as is. A literal backslash followed
// by 'n' in the data is therefore indistinguishable from an escaped newline.
package encode

import "slices"

// initialSize matches a typical short row and avoids regrowth in the common case.
const initialSize = 1024

var null = []byte(`\N`)

// Encoder turns rows into output lines. It reuses one scratch buffer, so an
// Encoder belongs to a single worker and the returned line is only valid
// until the next call.
type Encoder struct {
	escape bool
	buf    []byte
}

// New returns an Encoder; escape enables byte escaping of field values.
func New(escape bool) *Encoder {
	return &Encoder{escape: escape, buf: make([]byte, 0, initialSize)}
}

// Encode renders one row. database may be empty, in which case the database
// column is omitted. fields[i] == nil means NULL.
func (e *Encoder) Encode(server, database string, fields [][]byte) []byte {
	need := len(server) + len(database) + 2 + len(fields)
	for _, f := range fields {
		if f == nil {
			need += len(null)
		} else if e.escape {
			need += 2 * len(f)
		} else {
			need += len(f)
		}
	}

	b := slices.Grow(e.buf[:0], need)
	b = append(b, server...)
	if database != "" {
		b = append(b, '\t')
		b = append(b, database...)
	}
	for _, f := range fields {
		b = append(b, '\t')
		switch {
		case f == nil:
			b = append(b, null...)
		case e.escape:
			b = Escape(b, f)
		default:
			b = append(b, f...)
		}
	}
	b = append(b, '\n')

	e.buf = b
	return b
}

// Escape appends src to dst with newline, tab and NUL replaced by their
// two-byte backslash forms. dst should have room for 2*len(src) bytes.
func Escape(dst, src []byte) []byte {
	for _, c := range src {
		switch c {
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\t':
			dst = append(dst, '\\', 't')
		case 0:
			dst = append(dst, '\\', '0')
		default:
			dst = append(dst, c)
		}
	}
	return dst
}
