package jsonbuf

import (
	"math"
	"strconv"
)

// intScratchSize fits the longest decimal int64/uint64 including sign.
const intScratchSize = 20

// floatScratchSize fits the worst-case fixed-point float64: up to 309 integer
// digits, a sign, the decimal point, and maxFloatPrecision fractional digits.
const floatScratchSize = 340

// Numbers are rendered into a private scratch array first and copied only
// after the capacity check passes, so a too-small remaining capacity never
// leaves truncated digits in the caller's buffer beyond the committed length.

func (w *Writer) writeInt(v int64) bool {
	if !w.valueSeparator() {
		return false
	}
	var scratch [intScratchSize]byte
	if !w.appendBytes(strconv.AppendInt(scratch[:0], v, 10)) {
		return false
	}
	w.afterValue()
	return true
}

func (w *Writer) writeUint(v uint64) bool {
	if !w.valueSeparator() {
		return false
	}
	var scratch [intScratchSize]byte
	if !w.appendBytes(strconv.AppendUint(scratch[:0], v, 10)) {
		return false
	}
	w.afterValue()
	return true
}

func (w *Writer) writeFloat(v float64) bool {
	if !w.valueSeparator() {
		return false
	}
	// JSON has no representation for NaN or infinity.
	if math.IsNaN(v) || math.IsInf(v, 0) {
		if !w.appendString("null") {
			return false
		}
		w.afterValue()
		return true
	}
	var scratch [floatScratchSize]byte
	if !w.appendBytes(strconv.AppendFloat(scratch[:0], v, 'f', w.precision, 64)) {
		return false
	}
	w.afterValue()
	return true
}
