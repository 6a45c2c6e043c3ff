package core

// Number formatting without fmt, for log text built on the device.

// Itoa converts an integer to its decimal string.
func Itoa(n int) string {
	if n < 0 {
		return "-" + utoa64(uint64(-int64(n)))
	}
	return utoa64(uint64(n))
}

// Utoa converts an unsigned integer to its decimal string.
func Utoa(n uint32) string {
	return utoa64(uint64(n))
}

func utoa64(n uint64) string {
	if n == 0 {
		return "0"
	}

	// Count digits
	temp := n
	digits := 0
	for temp > 0 {
		digits++
		temp /= 10
	}

	// Build string from right to left
	buf := make([]byte, digits)
	pos := digits - 1
	for n > 0 {
		buf[pos] = byte('0' + n%10)
		n /= 10
		pos--
	}
	return string(buf)
}

const hexDigits = "0123456789ABCDEF"

// Hex8 renders b as 0x followed by two upper case hex digits.
func Hex8(b uint8) string {
	return string([]byte{'0', 'x', hexDigits[b>>4], hexDigits[b&0x0F]})
}

// Decimal renders v/per with the given number of fraction digits, truncating
// toward zero. Decimal(23456, 1000, 1) is "23.4".
func Decimal(v int32, per int32, places int) string {
	neg := v < 0
	u := int64(v)
	if neg {
		u = -u
	}
	whole := u / int64(per)
	frac := u % int64(per)

	s := utoa64(uint64(whole))
	if neg {
		s = "-" + s
	}
	if places <= 0 {
		return s
	}
	for i := 0; i < places; i++ {
		frac *= 10
	}
	digits := utoa64(uint64(frac / int64(per)))
	for len(digits) < places {
		digits = "0" + digits
	}
	return s + "." + digits
}
