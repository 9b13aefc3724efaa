// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// paths.go — pure path derivation for both layouts plus save id / data key
// validation. Nothing here touches the filesystem.

package savestate

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/AndrewDonelson/savestate/internal/codec"
)

const (
	// DefaultDataKey is used when Save or Load is called with an empty key.
	DefaultDataKey = "main"

	// MetadataKey is reserved for the metadata file inside a save folder
	// and suffixes the metadata filename in single-file layout.
	MetadataKey = "_metadata"

	metadataExt = codec.ExtJSON
	tempPrefix  = ".tmp-"
)

// ValidateSaveID reports whether id is usable as a file or directory name.
func ValidateSaveID(id string) error {
	if err := validateName(id); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSaveID, err)
	}
	if strings.HasSuffix(id, MetadataKey) {
		return fmt.Errorf("%w: %q must not end with %q", ErrInvalidSaveID, id, MetadataKey)
	}
	return nil
}

// ValidateDataKey reports whether key is usable as an entry name.
func ValidateDataKey(key string) error {
	if key == MetadataKey {
		return fmt.Errorf("%w: %q", ErrReservedKey, key)
	}
	if err := validateName(key); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return nil
}

func validateName(s string) error {
	switch {
	case s == "":
		return fmt.Errorf("empty name")
	case s == "." || s == "..":
		return fmt.Errorf("%q is not a valid name", s)
	case strings.HasPrefix(s, "."):
		return fmt.Errorf("%q must not start with '.'", s)
	case strings.ContainsAny(s, "/\\\x00"):
		return fmt.Errorf("%q contains a path separator", s)
	}
	return nil
}

func normalizeKey(key string) string {
	if key == "" {
		return DefaultDataKey
	}
	return key
}

// saveFolder returns root/{id}.
func saveFolder(root, saveID string) string {
	return filepath.Join(root, saveID)
}

// dataPath returns the payload path for one entry. The data key is ignored
// in single-file layout.
func dataPath(root string, layout Layout, ext, saveID, dataKey string) string {
	if layout == FolderBased {
		return filepath.Join(root, saveID, normalizeKey(dataKey)+ext)
	}
	return filepath.Join(root, saveID+ext)
}

// metadataPath returns where the metadata record of saveID lives under
// layout.
func metadataPath(root string, layout Layout, saveID string) string {
	if layout == FolderBased {
		return filepath.Join(root, saveID, MetadataKey+metadataExt)
	}
	return filepath.Join(root, saveID+MetadataKey+metadataExt)
}

// otherLayout returns the layout that is not l.
func otherLayout(l Layout) Layout {
	if l == FolderBased {
		return SingleFile
	}
	return FolderBased
}

// isMetadataFile reports whether a root-level file name is a single-file
// metadata record.
func isMetadataFile(name string) bool {
	return strings.HasSuffix(name, MetadataKey+metadataExt)
}

// isHidden reports whether name is a dot file, which includes temp files.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// stem strips the extension from a file name.
func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// DefaultRootPath returns the directory used when Config.RootPath is empty:
// the user config directory + "savestate/saves", or "saves" relative to the
// working directory when that cannot be determined.
func DefaultRootPath() string {
	if dir, err := userConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "savestate", "saves")
	}
	return "saves"
}
