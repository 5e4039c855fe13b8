package codec

import (
	"errors"
	"fmt"
	"math"

	"hexbot/internal/domain"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

var (
	ErrUnknownOpCode    = errors.New("unknown op code")
	ErrMalformedPayload = errors.New("malformed payload")
	ErrUnsupportedType  = errors.New("unsupported type")
)

// Every payload is a protobuf Struct {"seat": n, "body": {...}}. For server
// messages seat is the addressee (NoSeat for everyone); for requests it is
// the sender.
const (
	keySeat = "seat"
	keyBody = "body"
)

func marshal(seat int, body map[string]any) ([]byte, error) {
	s, err := structpb.NewStruct(map[string]any{keySeat: seat, keyBody: body})
	if err != nil {
		return nil, fmt.Errorf("failed to build envelope: %w", err)
	}
	data, err := proto.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return data, nil
}

func unmarshal(data []byte) (int, *reader, error) {
	s := &structpb.Struct{}
	if err := proto.Unmarshal(data, s); err != nil {
		return domain.NoSeat, nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	r := &reader{s: s}
	seat := r.int(keySeat)
	body := r.sub(keyBody)
	if r.err != nil {
		return domain.NoSeat, nil, r.err
	}
	return seat, body, nil
}

// Frame prefixes data with its op code for transports without one.
func Frame(op int64, data []byte) []byte {
	b := protowire.AppendVarint(make([]byte, 0, len(data)+2), uint64(op))
	return append(b, data...)
}

// Unframe splits a frame built by Frame.
func Unframe(frame []byte) (int64, []byte, error) {
	op, n := protowire.ConsumeVarint(frame)
	if n < 0 {
		return 0, nil, fmt.Errorf("%w: bad frame header: %v", ErrMalformedPayload, protowire.ParseError(n))
	}
	return int64(op), frame[n:], nil
}

func bundleValue(b domain.Bundle) []any {
	out := make([]any, len(b))
	for i, v := range b {
		out[i] = v
	}
	return out
}

func boolsValue(bs []bool) []any {
	out := make([]any, len(bs))
	for i, v := range bs {
		out[i] = v
	}
	return out
}

func offerValue(o domain.Offer) map[string]any {
	return map[string]any{
		"from": o.From,
		"to":   boolsValue(o.To),
		"give": bundleValue(o.Give),
		"get":  bundleValue(o.Get),
	}
}

// reader pulls typed fields out of a Struct and keeps the first error.
type reader struct {
	s   *structpb.Struct
	err error
}

func (r *reader) fail(key, want string) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: field %q is not %s", ErrMalformedPayload, key, want)
	}
}

func (r *reader) field(key string) *structpb.Value {
	if r.err != nil {
		return nil
	}
	v, ok := r.s.GetFields()[key]
	if !ok {
		r.err = fmt.Errorf("%w: missing field %q", ErrMalformedPayload, key)
		return nil
	}
	return v
}

func toInt(v *structpb.Value) (int, bool) {
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || n.NumberValue != math.Trunc(n.NumberValue) {
		return 0, false
	}
	return int(n.NumberValue), true
}

func (r *reader) int(key string) int {
	v := r.field(key)
	if v == nil {
		return 0
	}
	n, ok := toInt(v)
	if !ok {
		r.fail(key, "an integer")
	}
	return n
}

func (r *reader) str(key string) string {
	v := r.field(key)
	if v == nil {
		return ""
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		r.fail(key, "a string")
		return ""
	}
	return s.StringValue
}

func (r *reader) list(key string) []*structpb.Value {
	v := r.field(key)
	if v == nil {
		return nil
	}
	l, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		r.fail(key, "a list")
		return nil
	}
	return l.ListValue.GetValues()
}

func (r *reader) ints(key string) []int {
	vals := r.list(key)
	out := make([]int, 0, len(vals))
	for _, v := range vals {
		n, ok := toInt(v)
		if !ok {
			r.fail(key, "a list of integers")
			return nil
		}
		out = append(out, n)
	}
	return out
}

func (r *reader) bools(key string) []bool {
	vals := r.list(key)
	out := make([]bool, 0, len(vals))
	for _, v := range vals {
		b, ok := v.GetKind().(*structpb.Value_BoolValue)
		if !ok {
			r.fail(key, "a list of booleans")
			return nil
		}
		out = append(out, b.BoolValue)
	}
	return out
}

func (r *reader) bundle(key string) domain.Bundle {
	var b domain.Bundle
	vals := r.ints(key)
	if r.err != nil {
		return b
	}
	if len(vals) != len(b) {
		r.fail(key, "a bundle")
		return b
	}
	copy(b[:], vals)
	return b
}

func (r *reader) sub(key string) *reader {
	v := r.field(key)
	if v == nil {
		return &reader{s: &structpb.Struct{}, err: r.err}
	}
	s, ok := v.GetKind().(*structpb.Value_StructValue)
	if !ok {
		r.fail(key, "an object")
		return &reader{s: &structpb.Struct{}, err: r.err}
	}
	return &reader{s: s.StructValue}
}

func (r *reader) subs(key string) []*reader {
	vals := r.list(key)
	out := make([]*reader, 0, len(vals))
	for _, v := range vals {
		s, ok := v.GetKind().(*structpb.Value_StructValue)
		if !ok {
			r.fail(key, "a list of objects")
			return nil
		}
		out = append(out, &reader{s: s.StructValue})
	}
	return out
}

// merge lifts a nested reader's error.
func (r *reader) merge(o *reader) {
	if r.err == nil && o.err != nil {
		r.err = o.err
	}
}

func (r *reader) offer(key string) domain.Offer {
	o := r.sub(key)
	offer := domain.Offer{
		From: o.int("from"),
		To:   o.bools("to"),
		Give: o.bundle("give"),
		Get:  o.bundle("get"),
	}
	r.merge(o)
	return offer
}

func (r *reader) resource(key string) domain.Resource {
	name := r.str(key)
	if r.err != nil {
		return domain.Unknown
	}
	res, ok := domain.ParseResource(name)
	if !ok {
		r.fail(key, "a resource")
	}
	return res
}

func (r *reader) piece(key string) domain.PieceType {
	name := r.str(key)
	if r.err != nil {
		return domain.PieceRoad
	}
	p, ok := domain.ParsePiece(name)
	if !ok {
		r.fail(key, "a piece")
	}
	return p
}

func (r *reader) card(key string) domain.DevCard {
	name := r.str(key)
	if r.err != nil {
		return domain.CardUnknown
	}
	c, ok := domain.ParseDevCard(name)
	if !ok {
		r.fail(key, "a development card")
	}
	return c
}
