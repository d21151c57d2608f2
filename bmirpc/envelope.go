// Package bmirpc defines the wire protocol of the model service: a gRPC
// service with a single generic envelope message pair. Requests carry an
// "op" field naming the model operation plus op-specific parameters;
// responses carry op-specific result fields. Both travel as protobuf
// Struct values, so the surface needs no code generation step and new
// operations need no schema change.
package bmirpc

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/coastalsim/longshore/internal/mapsafe"
)

// Request is the decoded form of a request envelope.
type Request struct {
	// Op names the model operation to invoke.
	Op string

	// Params carries the operation's parameters, if any.
	Params map[string]any
}

// String retrieves a string parameter. Missing keys return the empty
// string and false.
func (r Request) String(key string) (string, bool) {
	if !mapsafe.Has(r.Params, key) {
		return "", false
	}
	return mapsafe.Get(r.Params, key, ""), true
}

// Int retrieves an integer parameter.
func (r Request) Int(key string) (int, bool) {
	if !mapsafe.Has(r.Params, key) {
		return 0, false
	}
	return mapsafe.Get(r.Params, key, 0), true
}

// Float retrieves a float64 parameter.
func (r Request) Float(key string) (float64, bool) {
	if !mapsafe.Has(r.Params, key) {
		return 0, false
	}
	return mapsafe.Get(r.Params, key, 0.0), true
}

// Floats retrieves a []float64 parameter.
func (r Request) Floats(key string) ([]float64, bool) {
	return mapsafe.Floats(r.Params, key)
}

// Ints retrieves a []int parameter.
func (r Request) Ints(key string) ([]int, bool) {
	return mapsafe.Ints(r.Params, key)
}

// DecodeRequest unpacks a request envelope. The envelope must carry a
// non-empty "op" string; every other field becomes a parameter.
func DecodeRequest(s *structpb.Struct) (Request, error) {
	if s == nil {
		return Request{}, fmt.Errorf("bmirpc: empty request envelope")
	}

	params := s.AsMap()
	op := mapsafe.Get(params, "op", "")
	if op == "" {
		return Request{}, fmt.Errorf("bmirpc: request envelope has no op field")
	}
	delete(params, "op")

	return Request{Op: op, Params: params}, nil
}

// EncodeRequest packs an operation name and its parameters into a request
// envelope.
func EncodeRequest(op string, params map[string]any) (*structpb.Struct, error) {
	fields := make(map[string]any, len(params)+1)
	for k, v := range params {
		fields[k] = normalize(v)
	}
	fields["op"] = op

	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("bmirpc: failed to encode request for op %q: %w", op, err)
	}
	return s, nil
}

// EncodeResult packs result fields into a response envelope.
func EncodeResult(fields map[string]any) (*structpb.Struct, error) {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = normalize(v)
	}

	s, err := structpb.NewStruct(out)
	if err != nil {
		return nil, fmt.Errorf("bmirpc: failed to encode result: %w", err)
	}
	return s, nil
}

// DecodeResult unpacks a response envelope into a plain map for the typed
// accessors in mapsafe.
func DecodeResult(s *structpb.Struct) map[string]any {
	if s == nil {
		return map[string]any{}
	}
	return s.AsMap()
}

// DecodeParams unpacks an envelope carrying bare parameters and no op
// field, as the Run stream request does.
func DecodeParams(s *structpb.Struct) map[string]any {
	return DecodeResult(s)
}

// normalize rewrites the slice types the data plane uses into the []any
// form structpb accepts.
func normalize(v any) any {
	switch x := v.(type) {
	case []float64:
		out := make([]any, len(x))
		for i, f := range x {
			out[i] = f
		}
		return out
	case []int:
		out := make([]any, len(x))
		for i, n := range x {
			out[i] = float64(n)
		}
		return out
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	default:
		return v
	}
}
