// Package jsonbuf produces well-formed JSON incrementally into a fixed-capacity
// byte buffer supplied by the caller. It is built for resource-constrained
// producers: no heap allocation, no DOM, bounded container nesting, proper JSON
// string escaping, and all-or-nothing bounds checking on every append.
//
// The writer does not append a trailing NUL terminator. Use the span returned
// by Finalize and treat it as bytes of exact length.
//
//	buf := make([]byte, 256)
//	w := jsonbuf.New(buf)
//
//	w.BeginObject()
//	w.Key("id")
//	w.Uint32(123)
//	w.Key("name")
//	w.String("motor")
//	w.Key("values")
//	w.BeginArray()
//	w.Float32(1.0)
//	w.Float32(2.5)
//	w.EndArray()
//	w.EndObject()
//
//	if out, ok := w.Finalize(); ok {
//		// send out over UART, MQTT, a socket, ...
//	}
//
// Every mutating method reports failure by returning false and latching the
// writer into a permanent error state; once latched, all further operations are
// failing no-ops until Reset. Check Ok or the return value of each call.
//
// A Writer is not safe for concurrent use. Callers that need concurrent
// production must use independent writers over independent buffers.
package jsonbuf
