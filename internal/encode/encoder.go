package encode

import (
	"encoding/base64"
	"errors"

	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"

	"github.com/GustavPetterssonBjorklund/Json-Buffer-Writer/jsonbuf"
)

// DefaultBufferSize is the encoder buffer capacity used when the configured
// size is not positive.
const DefaultBufferSize = 4096

// ErrBufferFull is returned when a record does not fit in the encoder buffer.
// Nothing partial is ever returned; the caller should count the record as
// dropped.
var ErrBufferFull = errors.New("encode: record exceeds buffer capacity")

// The top-level object and the attributes object consume two nesting levels;
// what remains is the depth budget for foreign AnyValue nesting.
const attrDepthBudget = jsonbuf.MaxDepth - 2

// Encoder renders OTLP log records as single-line JSON documents into one
// reusable fixed-capacity buffer. It is not safe for concurrent use; the
// processor owns one instance on a single goroutine.
type Encoder struct {
	buf       []byte
	w         *jsonbuf.Writer
	precision int
}

// New returns an encoder with a buffer of bufSize bytes and the given float
// precision for double-valued attributes.
func New(bufSize, floatPrecision int) *Encoder {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	e := &Encoder{buf: make([]byte, bufSize), precision: floatPrecision}
	e.w = jsonbuf.New(e.buf)
	return e
}

// EncodeRecord renders one log record together with its scope and resource
// attributes. The returned slice aliases the encoder's internal buffer and is
// only valid until the next call.
func (e *Encoder) EncodeRecord(rec *logspb.LogRecord, scopeAttrs, resourceAttrs []*commonpb.KeyValue) ([]byte, error) {
	w := e.w
	w.Reset(e.buf)
	w.SetFloatPrecision(e.precision)

	w.BeginObject()

	w.Key("timestamp")
	w.Uint64(rec.GetTimeUnixNano())

	if sev := rec.GetSeverityText(); sev != "" {
		w.Key("severity")
		w.String(sev)
	}

	w.Key("body")
	e.anyValue(w, rec.GetBody(), attrDepthBudget)

	if attrs := rec.GetAttributes(); len(attrs) > 0 {
		w.Key("attributes")
		e.keyValues(w, attrs)
	}
	if len(scopeAttrs) > 0 {
		w.Key("scope")
		e.keyValues(w, scopeAttrs)
	}
	if len(resourceAttrs) > 0 {
		w.Key("resource")
		e.keyValues(w, resourceAttrs)
	}

	w.EndObject()

	out, ok := w.Finalize()
	if !ok {
		return nil, ErrBufferFull
	}
	return out, nil
}

func (e *Encoder) keyValues(w *jsonbuf.Writer, kvs []*commonpb.KeyValue) {
	w.BeginObject()
	for _, kv := range kvs {
		w.Key(kv.GetKey())
		e.anyValue(w, kv.GetValue(), attrDepthBudget-1)
	}
	w.EndObject()
}

// anyValue writes an OTLP AnyValue. depth is the remaining container budget;
// arrays and kvlists past the budget collapse to null rather than tripping the
// writer's depth latch, since foreign data must not poison the whole record.
func (e *Encoder) anyValue(w *jsonbuf.Writer, v *commonpb.AnyValue, depth int) {
	if v == nil {
		w.Null()
		return
	}

	switch x := v.Value.(type) {
	case *commonpb.AnyValue_StringValue:
		w.String(x.StringValue)
	case *commonpb.AnyValue_BoolValue:
		w.Bool(x.BoolValue)
	case *commonpb.AnyValue_IntValue:
		w.Int64(x.IntValue)
	case *commonpb.AnyValue_DoubleValue:
		w.Float64(x.DoubleValue)
	case *commonpb.AnyValue_BytesValue:
		w.String(base64.StdEncoding.EncodeToString(x.BytesValue))
	case *commonpb.AnyValue_ArrayValue:
		if depth <= 0 {
			w.Null()
			return
		}
		w.BeginArray()
		for _, el := range x.ArrayValue.GetValues() {
			e.anyValue(w, el, depth-1)
		}
		w.EndArray()
	case *commonpb.AnyValue_KvlistValue:
		if depth <= 0 {
			w.Null()
			return
		}
		w.BeginObject()
		for _, kv := range x.KvlistValue.GetValues() {
			w.Key(kv.GetKey())
			e.anyValue(w, kv.GetValue(), depth-1)
		}
		w.EndObject()
	default:
		w.Null()
	}
}
