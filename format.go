package savestate

import (
	"fmt"
	"strings"

	"github.com/AndrewDonelson/savestate/internal/codec"
)

// Format selects the codec used for save payloads.
type Format int

const (
	FormatJSON     Format = iota // human-readable JSON, ".json"
	FormatBinary                 // Go-native gob, ".sav"
	FormatMsgPack                // MessagePack, ".sav"
	FormatProtobuf               // protocol buffers (values must be proto.Message), ".sav"
)

var formatNames = map[Format]string{
	FormatJSON:     "json",
	FormatBinary:   "binary",
	FormatMsgPack:  "msgpack",
	FormatProtobuf: "protobuf",
}

var formatCodecs = map[Format]codec.Codec{
	FormatJSON:     codec.JSON{},
	FormatBinary:   codec.Gob{},
	FormatMsgPack:  codec.MsgPack{},
	FormatProtobuf: codec.Protobuf{},
}

func (f Format) String() string {
	if n, ok := formatNames[f]; ok {
		return n
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Valid reports whether f names a known codec.
func (f Format) Valid() bool {
	_, ok := formatCodecs[f]
	return ok
}

// Extension returns the file extension written for f.
func (f Format) Extension() string {
	if c, ok := formatCodecs[f]; ok {
		return c.Extension()
	}
	return ""
}

func (f Format) codec() (codec.Codec, error) {
	c, ok := formatCodecs[f]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, int(f))
	}
	return c, nil
}

// ParseFormat parses a format name as produced by Format.String.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "binary", "gob", "bin":
		return FormatBinary, nil
	case "msgpack", "messagepack":
		return FormatMsgPack, nil
	case "protobuf", "proto":
		return FormatProtobuf, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(b []byte) error {
	v, err := ParseFormat(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// knownExtensions lists every distinct extension any codec writes.
func knownExtensions() []string {
	return []string{codec.ExtJSON, codec.ExtBinary}
}

// Layout selects how saves map onto the filesystem.
type Layout int

const (
	SingleFile  Layout = iota // one file per save: root/{id}{ext}
	FolderBased               // one directory per save: root/{id}/{key}{ext}
)

func (l Layout) String() string {
	switch l {
	case SingleFile:
		return "single_file"
	case FolderBased:
		return "folder"
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// Valid reports whether l is a known layout.
func (l Layout) Valid() bool {
	return l == SingleFile || l == FolderBased
}

// ParseLayout parses a layout name.
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single_file", "single", "singlefile", "file", "":
		return SingleFile, nil
	case "folder", "folder_based", "folderbased", "dir":
		return FolderBased, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidLayout, s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Layout) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLayout, int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Layout) UnmarshalText(b []byte) error {
	v, err := ParseLayout(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}
