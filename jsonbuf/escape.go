package jsonbuf

const hexDigits = "0123456789abcdef"

// writeQuoted emits s surrounded by double quotes, escaping as it goes. It
// does not touch container state; callers handle separators and afterValue.
func (w *Writer) writeQuoted(s string) bool {
	if !w.appendByte('"') {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !w.escapeByte(s[i]) {
			return false
		}
	}
	return w.appendByte('"')
}

func (w *Writer) writeQuotedBytes(b []byte) bool {
	if !w.appendByte('"') {
		return false
	}
	for _, c := range b {
		if !w.escapeByte(c) {
			return false
		}
	}
	return w.appendByte('"')
}

// escapeByte emits one input byte in its JSON string form: the two-character
// escapes for quote, backslash and the common control characters, \u00XX for
// the remaining bytes below 0x20, and everything else verbatim. Bytes >= 0x80
// are copied through untouched; the writer never reinterprets UTF-8.
func (w *Writer) escapeByte(c byte) bool {
	switch c {
	case '"':
		return w.appendString(`\"`)
	case '\\':
		return w.appendString(`\\`)
	case '\b':
		return w.appendString(`\b`)
	case '\f':
		return w.appendString(`\f`)
	case '\n':
		return w.appendString(`\n`)
	case '\r':
		return w.appendString(`\r`)
	case '\t':
		return w.appendString(`\t`)
	default:
		if c < 0x20 {
			esc := [6]byte{'\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf]}
			return w.appendBytes(esc[:])
		}
		return w.appendByte(c)
	}
}
