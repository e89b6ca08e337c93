//go:build !(rp2040 || rp2350)

package strconvx

import "strconv"

// Signature parity with strconv; host builds delegate straight through.

func Itoa(i int) string                    { return strconv.Itoa(i) }
func FormatUint(u uint64, base int) string { return strconv.FormatUint(u, base) }

func AppendInt(dst []byte, i int64, base int) []byte   { return strconv.AppendInt(dst, i, base) }
func AppendUint(dst []byte, u uint64, base int) []byte { return strconv.AppendUint(dst, u, base) }
func AppendBool(dst []byte, b bool) []byte             { return strconv.AppendBool(dst, b) }

func AppendFloat(dst []byte, f float64, fmt byte, prec, bitSize int) []byte {
	return strconv.AppendFloat(dst, f, fmt, prec, bitSize)
}
