package savestate

import (
	"errors"
	"os"
	"path/filepath"
	"time"
)

// Delete removes a save or one of its entries and reports whether anything
// was removed. An empty dataKey removes the whole save in both layouts
// (payloads, metadata and cache entries). A non-empty dataKey removes that
// entry only when the save uses the folder layout; for a single-file save it
// removes the whole save. Nothing to remove is (false, nil).
func (s *Store) Delete(saveID, dataKey string) (bool, error) {
	if err := s.checkOpen(); err != nil {
		return false, err
	}
	if err := ValidateSaveID(saveID); err != nil {
		return false, err
	}
	if dataKey != "" {
		if err := ValidateDataKey(dataKey); err != nil {
			return false, err
		}
	}

	s.stats.Deletes.Add(1)
	start := time.Now()
	defer func() { s.metrics.RecordLatency("delete", time.Since(start)) }()

	unlock := s.lockSave(saveID)
	defer unlock()

	st := s.settings()
	var (
		removed bool
		err     error
	)
	if dataKey == "" {
		removed, err = s.deleteSave(st, saveID)
	} else {
		removed, err = s.deleteEntry(st, saveID, dataKey)
	}
	if err != nil {
		return removed, s.fail("delete", err, "save_id", saveID, "data_key", dataKey)
	}
	if !removed {
		s.logger.Warn("savestate: nothing to delete", "save_id", saveID, "data_key", dataKey)
		return false, nil
	}
	s.logger.Info("savestate: deleted", "save_id", saveID, "data_key", dataKey)
	return true, nil
}

// deleteSave removes every artifact of saveID under both layouts.
func (s *Store) deleteSave(st settings, saveID string) (bool, error) {
	s.data.DeletePrefix(dataCachePrefix(saveID))
	s.meta.Delete(saveID)

	var (
		removed  bool
		firstErr error
	)
	note := func(ok bool, err error) {
		removed = removed || ok
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, ext := range knownExtensions() {
		note(removeFile(dataPath(st.root, SingleFile, ext, saveID, "")))
	}
	note(removeFile(metadataPath(st.root, SingleFile, saveID)))

	folder := saveFolder(st.root, saveID)
	if isDir(folder) {
		note(true, os.RemoveAll(folder))
	}
	return removed, firstErr
}

// deleteEntry removes one folder-layout entry and its entry record.
func (s *Store) deleteEntry(st settings, saveID, key string) (bool, error) {
	m, err := s.loadMetadata(st, saveID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, err
	}
	layout := st.layout
	if m != nil {
		layout = m.Layout
	}
	if layout != FolderBased {
		return s.deleteSave(st, saveID)
	}

	s.data.Delete(dataCacheKey(saveID, key))
	var removed bool
	for _, ext := range knownExtensions() {
		ok, err := removeFile(dataPath(st.root, FolderBased, ext, saveID, key))
		if err != nil {
			return removed, err
		}
		removed = removed || ok
	}
	if m != nil {
		if _, ok := m.Entries[key]; ok {
			delete(m.Entries, key)
			m.ModifiedAt = s.now()
			if err := s.persistMetadata(st, FolderBased, m); err != nil {
				return removed, err
			}
		}
	}
	return removed, nil
}

// DeleteAll removes every save stored under the root for the current layout
// and flushes both caches. In single-file layout only payload and metadata
// files are removed; other files in the root are left alone. It keeps going past individual failures and
// returns the number of saves removed with the first error seen.
func (s *Store) DeleteAll() (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	start := time.Now()
	defer func() { s.metrics.RecordLatency("delete_all", time.Since(start)) }()

	st := s.settings()
	defer func() {
		s.data.Flush()
		s.meta.Flush()
	}()

	entries, err := os.ReadDir(st.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, s.fail("delete_all", err, "root", st.root)
	}

	saves := make(map[string]struct{})
	var firstErr error
	for _, e := range entries {
		name := e.Name()
		if isHidden(name) {
			continue
		}
		path := filepath.Join(st.root, name)
		switch {
		case st.layout == FolderBased && e.IsDir():
			err = os.RemoveAll(path)
			if err == nil {
				saves[name] = struct{}{}
			}
		case st.layout == SingleFile && !e.IsDir() && (isPayloadFile(name) || isMetadataFile(name)):
			_, err = removeFile(path)
			if err == nil && !isMetadataFile(name) {
				saves[stem(name)] = struct{}{}
			}
		default:
			continue
		}
		if err != nil {
			s.logger.Warn("savestate: delete_all could not remove", "path", path, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	s.stats.Deletes.Add(int64(len(saves)))
	if firstErr != nil {
		return len(saves), s.fail("delete_all", firstErr, "root", st.root)
	}
	s.logger.Info("savestate: deleted all saves", "root", st.root, "layout", st.layout, "count", len(saves))
	return len(saves), nil
}
