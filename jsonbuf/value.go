package jsonbuf

// String writes a string value with full JSON escaping.
func (w *Writer) String(s string) bool {
	if !w.valueSeparator() {
		return false
	}
	if !w.writeQuoted(s) {
		return false
	}
	w.afterValue()
	return true
}

// StringBytes writes exactly len(b) bytes as an escaped JSON string. The slice
// need not hold valid UTF-8; bytes outside the escape table are copied
// verbatim.
func (w *Writer) StringBytes(b []byte) bool {
	if !w.valueSeparator() {
		return false
	}
	if !w.writeQuotedBytes(b) {
		return false
	}
	w.afterValue()
	return true
}

// Bool writes true or false.
func (w *Writer) Bool(v bool) bool {
	if !w.valueSeparator() {
		return false
	}
	lit := "false"
	if v {
		lit = "true"
	}
	if !w.appendString(lit) {
		return false
	}
	w.afterValue()
	return true
}

// Int32 writes a 32-bit signed integer in canonical decimal form.
func (w *Writer) Int32(v int32) bool {
	return w.writeInt(int64(v))
}

// Uint32 writes a 32-bit unsigned integer in canonical decimal form.
func (w *Writer) Uint32(v uint32) bool {
	return w.writeUint(uint64(v))
}

// Int64 writes a 64-bit signed integer in canonical decimal form.
func (w *Writer) Int64(v int64) bool {
	return w.writeInt(v)
}

// Uint64 writes a 64-bit unsigned integer in canonical decimal form.
func (w *Writer) Uint64(v uint64) bool {
	return w.writeUint(v)
}

// Float32 writes a single-precision float, promoted to double before
// formatting with the configured precision.
func (w *Writer) Float32(v float32) bool {
	return w.writeFloat(float64(v))
}

// Float64 writes a double-precision float with the configured precision.
func (w *Writer) Float64(v float64) bool {
	return w.writeFloat(v)
}

// Null writes a JSON null.
func (w *Writer) Null() bool {
	if !w.valueSeparator() {
		return false
	}
	if !w.appendString("null") {
		return false
	}
	w.afterValue()
	return true
}

// Raw copies fragment verbatim with no escaping or syntax checking. The caller
// is responsible for supplying valid JSON; this is the only unchecked escape
// hatch.
func (w *Writer) Raw(fragment []byte) bool {
	if !w.valueSeparator() {
		return false
	}
	if !w.appendBytes(fragment) {
		return false
	}
	w.afterValue()
	return true
}
