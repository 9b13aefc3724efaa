package codec

import (
	"bytes"
	"encoding/gob"
)

// Gob is the Go-native binary codec.
type Gob struct{}

// Marshal serializes v with encoding/gob.
func (Gob) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal deserializes gob bytes into v.
func (Gob) Unmarshal(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// Name returns "binary".
func (Gob) Name() string { return "binary" }

// Extension returns ".sav".
func (Gob) Extension() string { return ExtBinary }

// Binary returns true.
func (Gob) Binary() bool { return true }
