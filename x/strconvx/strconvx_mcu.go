//go:build rp2040 || rp2350

package strconvx

// Allocation-light stand-ins with strconv's signatures, so firmware builds
// pull in neither strconv nor fmt. Bases 2..36 are supported; AppendFloat
// only knows fixed-point ('f') output.

const digits = "0123456789abcdefghijklmnopqrstuvwxyz"

func Itoa(i int) string { return string(AppendInt(nil, int64(i), 10)) }

func FormatUint(u uint64, base int) string { return string(AppendUint(nil, u, base)) }

func AppendInt(dst []byte, i int64, base int) []byte {
	if i < 0 {
		dst = append(dst, '-')
		return AppendUint(dst, uint64(-i), base)
	}
	return AppendUint(dst, uint64(i), base)
}

func AppendUint(dst []byte, u uint64, base int) []byte {
	if base < 2 || base > 36 {
		base = 10
	}
	var buf [64]byte
	i := len(buf)
	b := uint64(base)
	for {
		i--
		buf[i] = digits[u%b]
		u /= b
		if u == 0 {
			break
		}
	}
	return append(dst, buf[i:]...)
}

func AppendBool(dst []byte, b bool) []byte {
	if b {
		return append(dst, "true"...)
	}
	return append(dst, "false"...)
}

// AppendFloat writes f with prec fractional digits, rounding half up.
// fmt and bitSize are accepted for parity and ignored.
func AppendFloat(dst []byte, f float64, _ byte, prec, _ int) []byte {
	switch {
	case f != f:
		return append(dst, "NaN"...)
	case f > maxFloat:
		return append(dst, "+Inf"...)
	case f < -maxFloat:
		return append(dst, "-Inf"...)
	}
	if prec < 0 {
		prec = 6
	}
	if prec > 9 {
		prec = 9
	}
	if f < 0 {
		dst = append(dst, '-')
		f = -f
	}
	pow := uint64(1)
	for i := 0; i < prec; i++ {
		pow *= 10
	}
	intp := uint64(f)
	frac := uint64((f-float64(intp))*float64(pow) + 0.5)
	if frac >= pow {
		intp++
		frac -= pow
	}
	dst = AppendUint(dst, intp, 10)
	if prec == 0 {
		return dst
	}
	dst = append(dst, '.')
	for p := pow / 10; p > 1 && frac < p; p /= 10 {
		dst = append(dst, '0')
	}
	return AppendUint(dst, frac, 10)
}

const maxFloat = 1.7976931348623157e308
