package encode

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"
)

func kvStr(k, v string) *commonpb.KeyValue {
	return &commonpb.KeyValue{Key: k, Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: v}}}
}

func kvInt(k string, v int64) *commonpb.KeyValue {
	return &commonpb.KeyValue{Key: k, Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_IntValue{IntValue: v}}}
}

func kvDouble(k string, v float64) *commonpb.KeyValue {
	return &commonpb.KeyValue{Key: k, Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_DoubleValue{DoubleValue: v}}}
}

func kvBool(k string, v bool) *commonpb.KeyValue {
	return &commonpb.KeyValue{Key: k, Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_BoolValue{BoolValue: v}}}
}

func strVal(s string) *commonpb.AnyValue {
	return &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: s}}
}

func TestEncoder_EncodeRecord_Golden(t *testing.T) {
	e := New(4096, 3)

	rec := &logspb.LogRecord{
		TimeUnixNano: 1700000000000000000,
		SeverityText: "INFO",
		Body:         strVal("hello world"),
		Attributes: []*commonpb.KeyValue{
			kvStr("foo", "bar"),
			kvInt("count", 42),
			kvDouble("pi", 3.14),
			kvBool("ok", true),
		},
	}
	scopeAttrs := []*commonpb.KeyValue{kvStr("lib", "demo")}
	resAttrs := []*commonpb.KeyValue{kvStr("service.name", "demo-svc")}

	out, err := e.EncodeRecord(rec, scopeAttrs, resAttrs)
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "record", out)
}

func TestEncoder_EncodeRecord_MinimalRecord(t *testing.T) {
	e := New(4096, 3)

	out, err := e.EncodeRecord(&logspb.LogRecord{}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, `{"timestamp":0,"body":null}`, string(out))
}

func TestEncoder_EncodeRecord_EscapesBody(t *testing.T) {
	e := New(4096, 3)

	rec := &logspb.LogRecord{Body: strVal("line1\nline2 \"quoted\"")}
	out, err := e.EncodeRecord(rec, nil, nil)
	require.NoError(t, err)

	var got struct {
		Body string `json:"body"`
	}
	require.NoError(t, json.Unmarshal(out, &got))
	require.Equal(t, "line1\nline2 \"quoted\"", got.Body)
}

func TestEncoder_EncodeRecord_NestedAttributes(t *testing.T) {
	e := New(4096, 3)

	nested := &commonpb.KeyValue{
		Key: "list",
		Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_ArrayValue{ArrayValue: &commonpb.ArrayValue{
			Values: []*commonpb.AnyValue{
				strVal("a"),
				{Value: &commonpb.AnyValue_IntValue{IntValue: 7}},
			},
		}}},
	}

	out, err := e.EncodeRecord(&logspb.LogRecord{Attributes: []*commonpb.KeyValue{nested}}, nil, nil)
	require.NoError(t, err)

	var got struct {
		Attributes map[string]any `json:"attributes"`
	}
	require.NoError(t, json.Unmarshal(out, &got))
	require.Equal(t, []any{"a", float64(7)}, got.Attributes["list"])
}

func TestEncoder_EncodeRecord_DeepNestingCollapsesToNull(t *testing.T) {
	e := New(4096, 3)

	// Build a kvlist chain far deeper than the writer's nesting budget.
	leaf := strVal("bottom")
	v := leaf
	for i := 0; i < 12; i++ {
		v = &commonpb.AnyValue{Value: &commonpb.AnyValue_KvlistValue{KvlistValue: &commonpb.KeyValueList{
			Values: []*commonpb.KeyValue{{Key: "next", Value: v}},
		}}}
	}

	out, err := e.EncodeRecord(&logspb.LogRecord{Attributes: []*commonpb.KeyValue{{Key: "deep", Value: v}}}, nil, nil)
	require.NoError(t, err, "deep nesting must degrade, not fail")

	// The document stays valid JSON with the over-deep tail nulled out.
	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
}

func TestEncoder_EncodeRecord_BytesAttribute(t *testing.T) {
	e := New(4096, 3)

	attr := &commonpb.KeyValue{
		Key:   "blob",
		Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_BytesValue{BytesValue: []byte{0xDE, 0xAD}}},
	}

	out, err := e.EncodeRecord(&logspb.LogRecord{Attributes: []*commonpb.KeyValue{attr}}, nil, nil)
	require.NoError(t, err)

	var got struct {
		Attributes map[string]any `json:"attributes"`
	}
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, "3q0=", got.Attributes["blob"])
}

func TestEncoder_EncodeRecord_BufferFull(t *testing.T) {
	e := New(32, 3)

	rec := &logspb.LogRecord{Body: strVal("a body that clearly does not fit in thirty-two bytes")}
	_, err := e.EncodeRecord(rec, nil, nil)
	require.ErrorIs(t, err, ErrBufferFull)
}

func TestEncoder_EncodeRecord_RecoversAfterOverflow(t *testing.T) {
	e := New(64, 3)

	_, err := e.EncodeRecord(&logspb.LogRecord{Body: strVal("this body is far too long to fit in a sixty-four byte buffer, sorry")}, nil, nil)
	require.ErrorIs(t, err, ErrBufferFull)

	// The next record re-arms the writer via Reset.
	out, err := e.EncodeRecord(&logspb.LogRecord{Body: strVal("ok")}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, `{"timestamp":0,"body":"ok"}`, string(out))
}

func TestEncoder_EncodeRecord_ReusesBuffer(t *testing.T) {
	e := New(256, 3)

	first, err := e.EncodeRecord(&logspb.LogRecord{Body: strVal("one")}, nil, nil)
	require.NoError(t, err)
	firstCopy := string(first)

	second, err := e.EncodeRecord(&logspb.LogRecord{Body: strVal("two")}, nil, nil)
	require.NoError(t, err)

	require.Equal(t, `{"timestamp":0,"body":"two"}`, string(second))
	require.NotEqual(t, firstCopy, string(first), "first slice must alias the reused buffer")
}
