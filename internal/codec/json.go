// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// json.go — JSON codec wrapping encoding/json; the human-readable default
// and the only codec ever used for save metadata.

package codec

import "encoding/json"

// JSON is the default codec using standard library encoding/json.
type JSON struct{}

// Marshal serializes v to indented JSON bytes.
func (JSON) Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// Unmarshal deserializes JSON bytes into v.
func (JSON) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Name returns "json".
func (JSON) Name() string { return "json" }

// Extension returns ".json".
func (JSON) Extension() string { return ExtJSON }

// Binary returns false.
func (JSON) Binary() bool { return false }

// Default is the default codec instance.
var Default Codec = JSON{}
