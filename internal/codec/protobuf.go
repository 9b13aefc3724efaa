package codec

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/proto"
)

// ErrNotProtoMessage is returned by Protobuf when the value does not
// implement proto.Message.
var ErrNotProtoMessage = errors.New("codec: value does not implement proto.Message")

// Protobuf encodes generated protocol buffer messages.
type Protobuf struct{}

// Marshal serializes v, which must be a proto.Message.
func (Protobuf) Marshal(v any) ([]byte, error) {
	m, ok := v.(proto.Message)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotProtoMessage, v)
	}
	return proto.MarshalOptions{Deterministic: true}.Marshal(m)
}

// Unmarshal deserializes data into v, which must be a proto.Message.
func (Protobuf) Unmarshal(data []byte, v any) error {
	m, ok := v.(proto.Message)
	if !ok {
		return fmt.Errorf("%w: %T", ErrNotProtoMessage, v)
	}
	return proto.Unmarshal(data, m)
}

// Name returns "protobuf".
func (Protobuf) Name() string { return "protobuf" }

// Extension returns ".sav".
func (Protobuf) Extension() string { return ExtBinary }

// Binary returns true.
func (Protobuf) Binary() bool { return true }
