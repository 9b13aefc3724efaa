// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// errors.go — sentinel error variables returned by the public savestate API,
// covering configuration, identifiers, missing saves, codec and cipher
// failures.

// Package savestate persists application state ("saves") to the filesystem
// under a pluggable codec, optional compression and optional passphrase
// encryption, in either a single-file or a folder-per-save layout, with
// per-save metadata that survives later changes to the global settings.
package savestate

import "errors"

// Config errors
var (
	ErrInvalidConfig     = errors.New("savestate: invalid configuration")
	ErrUnsupportedFormat = errors.New("savestate: unsupported format")
	ErrInvalidLayout     = errors.New("savestate: invalid layout")
)

// Identifier errors
var (
	ErrInvalidSaveID = errors.New("savestate: invalid save id")
	ErrInvalidKey    = errors.New("savestate: invalid data key")
	ErrReservedKey   = errors.New("savestate: data key is reserved")
)

// Data errors
var (
	ErrNotFound     = errors.New("savestate: save not found")
	ErrEncodeFailed = errors.New("savestate: failed to encode value")
	ErrDecodeFailed = errors.New("savestate: failed to decode stored value")
)

// Cipher errors
var (
	ErrEncryptFailed   = errors.New("savestate: encryption failed")
	ErrDecryptFailed   = errors.New("savestate: decryption failed")
	ErrNoEncryptionKey = errors.New("savestate: no encryption key configured")
)

// Lifecycle errors
var (
	ErrClosed = errors.New("savestate: store is closed")
)
