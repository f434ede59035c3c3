package jsonbuf

const (
	// MaxDepth is the maximum supported container nesting depth.
	MaxDepth = 8

	// DefaultFloatPrecision is the default number of decimal places used for
	// floating point values. Restored on every Reset.
	DefaultFloatPrecision = 3

	// maxFloatPrecision bounds SetFloatPrecision; above 17 digits a float64
	// carries no further information.
	maxFloatPrecision = 17
)

// frame tracks one open container on the nesting stack.
type frame struct {
	isObject    bool // object vs array
	isFirst     bool // next element/pair is the first in this container
	expectValue bool // inside an object, a key has been written and its value is due
}

// Writer is a streaming JSON writer over a caller-provided buffer. The buffer
// is borrowed, never owned: the writer writes only within [0, Size()) and the
// caller retains ownership at all times, including across Reset.
//
// The zero value is unusable; construct with New.
type Writer struct {
	buf      []byte
	length   int
	hasError bool

	depth     int
	precision int
	frames    [MaxDepth]frame
}

// New returns a writer bound to buf. Capacity is len(buf).
func New(buf []byte) *Writer {
	w := &Writer{}
	w.Reset(buf)
	return w
}

// Reset rebinds the writer to buf (which may be the same or a different slice)
// and clears all accumulated state: error latch, depth, committed length, and
// float precision back to DefaultFloatPrecision.
func (w *Writer) Reset(buf []byte) {
	w.buf = buf
	w.length = 0
	w.hasError = false
	w.depth = 0
	w.precision = DefaultFloatPrecision
}

// SetFloatPrecision sets the number of digits after the decimal point for
// Float32/Float64 values, clamped to [0, 17]. Unlike the write operations it is
// never refused by the error latch.
func (w *Writer) SetFloatPrecision(digits int) {
	if digits < 0 {
		digits = 0
	}
	if digits > maxFloatPrecision {
		digits = maxFloatPrecision
	}
	w.precision = digits
}

// BeginObject opens a JSON object. Permitted at root with nothing yet written,
// inside an array, or directly after Key inside an object.
func (w *Writer) BeginObject() bool {
	return w.openContainer('{', true)
}

// BeginArray opens a JSON array. Permitted in the same positions as BeginObject.
func (w *Writer) BeginArray() bool {
	return w.openContainer('[', false)
}

// EndObject closes the current object. Fails if no container is open or the
// innermost container is an array.
func (w *Writer) EndObject() bool {
	return w.closeContainer('}', true)
}

// EndArray closes the current array. Fails if no container is open or the
// innermost container is an object.
func (w *Writer) EndArray() bool {
	return w.closeContainer(']', false)
}

// Key writes an object key (an escaped JSON string followed by a colon). The
// next call must supply the value: a value method, BeginObject, or BeginArray.
func (w *Writer) Key(name string) bool {
	if w.hasError || !w.inObject() {
		return w.fail()
	}

	f := &w.frames[w.depth-1]
	if f.expectValue {
		// Two keys in a row; the previous key never got its value.
		return w.fail()
	}

	if !f.isFirst && !w.appendByte(',') {
		return false
	}
	f.isFirst = false

	if !w.writeQuoted(name) {
		return false
	}
	if !w.appendByte(':') {
		return false
	}

	f.expectValue = true
	return true
}

// Finalize exposes the committed byte span without copying. It succeeds only
// when no error has occurred and all containers are closed; the writer state is
// left untouched either way.
func (w *Writer) Finalize() ([]byte, bool) {
	if w.hasError || w.depth != 0 {
		return nil, false
	}
	return w.buf[:w.length], true
}

// Ok reports whether the writer is error-free since construction or the last
// Reset.
func (w *Writer) Ok() bool {
	return !w.hasError
}

// Size returns the number of bytes committed so far.
func (w *Writer) Size() int {
	return w.length
}

func (w *Writer) inObject() bool {
	return w.depth > 0 && w.frames[w.depth-1].isObject
}

func (w *Writer) openContainer(open byte, isObject bool) bool {
	if w.hasError {
		return false
	}
	// Refuse before touching the buffer so that a depth overflow leaves no
	// bytes behind, committed or otherwise.
	if w.depth >= MaxDepth {
		return w.fail()
	}
	if !w.valueSeparator() {
		return false
	}
	if !w.appendByte(open) {
		return false
	}

	w.frames[w.depth] = frame{isObject: isObject, isFirst: true}
	w.depth++
	return true
}

func (w *Writer) closeContainer(closeByte byte, isObject bool) bool {
	if w.hasError || w.depth == 0 || w.frames[w.depth-1].isObject != isObject {
		return w.fail()
	}
	if !w.appendByte(closeByte) {
		return false
	}

	w.depth--
	w.afterValue()
	return true
}

// valueSeparator enforces the position rules for the next value token and
// emits a comma where one is due. Called before every value, Null, Raw, and
// container open.
func (w *Writer) valueSeparator() bool {
	if w.hasError {
		return false
	}

	if w.depth == 0 {
		// Root accepts exactly one top-level value or container.
		if w.length != 0 {
			return w.fail()
		}
		return true
	}

	f := &w.frames[w.depth-1]
	if f.isObject {
		// Inside an object every value must follow a key; the key already
		// wrote its separator.
		if !f.expectValue {
			return w.fail()
		}
		return true
	}

	if !f.isFirst && !w.appendByte(',') {
		return false
	}
	f.isFirst = false
	return true
}

// afterValue marks the value just written as consumed.
func (w *Writer) afterValue() {
	if w.depth > 0 {
		w.frames[w.depth-1].expectValue = false
	}
}

func (w *Writer) fail() bool {
	w.hasError = true
	return false
}

// appendByte commits a single byte, all-or-nothing.
func (w *Writer) appendByte(c byte) bool {
	if w.hasError || w.length+1 > len(w.buf) {
		return w.fail()
	}
	w.buf[w.length] = c
	w.length++
	return true
}

// appendBytes commits p, all-or-nothing.
func (w *Writer) appendBytes(p []byte) bool {
	if w.hasError || w.length+len(p) > len(w.buf) {
		return w.fail()
	}
	copy(w.buf[w.length:], p)
	w.length += len(p)
	return true
}

// appendString commits s, all-or-nothing.
func (w *Writer) appendString(s string) bool {
	if w.hasError || w.length+len(s) > len(w.buf) {
		return w.fail()
	}
	copy(w.buf[w.length:], s)
	w.length += len(s)
	return true
}
