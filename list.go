package savestate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// List returns the ids of every save under the root for the current layout:
// payload file stems in single-file layout (metadata, temp and dot files
// excluded), save directories in folder layout. The result is sorted.
func (s *Store) List() ([]string, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	st := s.settings()
	entries, err := os.ReadDir(st.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, s.fail("list", err, "root", st.root)
	}

	seen := make(map[string]struct{})
	for _, e := range entries {
		name := e.Name()
		if isHidden(name) {
			continue
		}
		if st.layout == FolderBased {
			if e.IsDir() {
				seen[name] = struct{}{}
			}
			continue
		}
		if e.IsDir() || isMetadataFile(name) || !isPayloadFile(name) {
			continue
		}
		seen[stem(name)] = struct{}{}
	}
	return sortedKeys(seen), nil
}

// ListDataKeys returns the entry keys stored in a folder-layout save, sorted,
// never including the reserved metadata key. In single-file layout it
// returns an empty list.
func (s *Store) ListDataKeys(saveID string) ([]string, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if err := ValidateSaveID(saveID); err != nil {
		return nil, err
	}
	st := s.settings()
	if st.layout != FolderBased {
		s.logger.Warn("savestate: data keys requested in single-file layout", "save_id", saveID)
		return []string{}, nil
	}

	dir := saveFolder(st.root, saveID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("savestate: save not found", "save_id", saveID)
			return nil, fmt.Errorf("%w: %s", ErrNotFound, saveID)
		}
		return nil, s.fail("list_keys", err, "save_id", saveID)
	}
	return entryKeys(entries), nil
}

// entryKeys collects the payload stems in a save folder.
func entryKeys(entries []os.DirEntry) []string {
	seen := make(map[string]struct{})
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || isHidden(name) || !isPayloadFile(name) {
			continue
		}
		if k := stem(name); k != MetadataKey {
			seen[k] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

func isPayloadFile(name string) bool {
	return slices.Contains(knownExtensions(), filepath.Ext(name))
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
