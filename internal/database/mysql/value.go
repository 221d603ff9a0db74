package mysql

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Exponent notation bounds of the MySQL server's DOUBLE/FLOAT text form:
// 1e14 prints as 100000000000000, 1e15 as 1e15, 0.00001 stays fixed and
// 0.000001 becomes 1e-6.
const (
	maxFixedDecpt = 15
	minFixedDecpt = -4
)

// textField receives one column value and keeps it in the server's text
// form. The driver hands numeric columns over already parsed, so they are
// rendered back the way the server prints them.
type textField struct {
	buf  []byte
	null bool
}

// Scan implements sql.Scanner. The buffer is reused across rows.
func (f *textField) Scan(src any) error {
	if f.buf == nil {
		f.buf = make([]byte, 0, 64)
	}
	f.buf = f.buf[:0]
	f.null = false

	switch v := src.(type) {
	case nil:
		f.null = true
	case []byte:
		f.buf = append(f.buf, v...)
	case string:
		f.buf = append(f.buf, v...)
	case int64:
		f.buf = strconv.AppendInt(f.buf, v, 10)
	case uint64:
		f.buf = strconv.AppendUint(f.buf, v, 10)
	case float32:
		f.buf = appendFloat(f.buf, float64(v), 32)
	case float64:
		f.buf = appendFloat(f.buf, v, 64)
	case bool:
		if v {
			f.buf = append(f.buf, '1')
		} else {
			f.buf = append(f.buf, '0')
		}
	case time.Time:
		f.buf = v.AppendFormat(f.buf, "2006-01-02 15:04:05.999999")
	default:
		f.buf = fmt.Appendf(f.buf, "%v", v)
	}
	return nil
}

// value is the field for a RowFunc: nil for NULL, never nil otherwise.
func (f *textField) value() []byte {
	if f.null {
		return nil
	}
	return f.buf
}

// appendFloat appends v with the shortest digits that round-trip at the
// given bit size, in fixed notation inside the server's range and as
// "1.5e-7" / "1e20" outside it.
func appendFloat(dst []byte, v float64, bits int) []byte {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.AppendFloat(dst, v, 'g', -1, bits)
	}
	if math.Signbit(v) {
		dst = append(dst, '-')
		v = -v
	}

	var scratch [32]byte
	sci := strconv.AppendFloat(scratch[:0], v, 'e', -1, bits)
	mant, exp, _ := strings.Cut(string(sci), "e")
	digits := strings.Replace(mant, ".", "", 1)
	e, _ := strconv.Atoi(exp)
	decpt := e + 1

	if v != 0 && (decpt > maxFixedDecpt || decpt < minFixedDecpt) {
		dst = append(dst, digits[0])
		if len(digits) > 1 {
			dst = append(dst, '.')
			dst = append(dst, digits[1:]...)
		}
		dst = append(dst, 'e')
		return strconv.AppendInt(dst, int64(e), 10)
	}

	switch {
	case decpt <= 0:
		dst = append(dst, "0."...)
		for i := decpt; i < 0; i++ {
			dst = append(dst, '0')
		}
		dst = append(dst, digits...)
	case decpt >= len(digits):
		dst = append(dst, digits...)
		for i := len(digits); i < decpt; i++ {
			dst = append(dst, '0')
		}
	default:
		dst = append(dst, digits[:decpt]...)
		dst = append(dst, '.')
		dst = append(dst, digits[decpt:]...)
	}
	return dst
}
