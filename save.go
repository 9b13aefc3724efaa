package savestate

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"time"
)

// SaveOption customises a single Save call.
type SaveOption func(*saveOptions)

type saveOptions struct {
	name        string
	description string
}

// WithName sets the display name recorded in the save's metadata.
func WithName(name string) SaveOption {
	return func(o *saveOptions) { o.name = name }
}

// WithDescription sets the description recorded in the save's metadata.
func WithDescription(description string) SaveOption {
	return func(o *saveOptions) { o.description = description }
}

func dataCacheKey(saveID, key string) string {
	return saveID + "\x00" + key
}

func dataCachePrefix(saveID string) string {
	return saveID + "\x00"
}

// Save writes value as entry dataKey of saveID under the current layout,
// format, compression and encryption settings, overwriting any previous
// payload. dataKey is ignored in single-file layout; empty means
// DefaultDataKey. Directory creation failures are returned as-is.
func (s *Store) Save(saveID, dataKey string, value any, opts ...SaveOption) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := ValidateSaveID(saveID); err != nil {
		return err
	}
	key := normalizeKey(dataKey)
	if err := ValidateDataKey(key); err != nil {
		return err
	}
	var o saveOptions
	for _, opt := range opts {
		opt(&o)
	}

	s.stats.Saves.Add(1)
	start := time.Now()
	defer func() { s.metrics.RecordLatency("save", time.Since(start)) }()

	st := s.settings()
	p := st.pipeline()

	text, err := encodeValue(p.Format, value)
	if err != nil {
		return s.fail("save", err, "save_id", saveID, "data_key", key)
	}
	payload, err := seal(p, st.cipher, text)
	if err != nil {
		return s.fail("save", err, "save_id", saveID, "data_key", key)
	}

	unlock := s.lockSave(saveID)
	defer unlock()

	meta, created, err := s.getOrCreateMetadata(st, saveID, o.name, o.description)
	if err != nil {
		return s.fail("save", err, "save_id", saveID, "data_key", key)
	}
	prevLayout := meta.Layout

	now := s.now()
	meta.ModifiedAt = now
	meta.Layout = st.layout
	meta.Format = p.Format
	meta.Encrypted = p.Encrypted
	meta.Compressed = p.Compressed
	if st.layout == FolderBased {
		if meta.Entries == nil || prevLayout != FolderBased {
			meta.Entries = make(map[string]EntryRecord)
		}
		meta.Entries[key] = EntryRecord{Format: p.Format, Encrypted: p.Encrypted, Compressed: p.Compressed, ModifiedAt: now}
	} else {
		meta.Entries = nil
	}

	path := dataPath(st.root, st.layout, p.Format.Extension(), saveID, key)
	if err := ensureDir(filepath.Dir(path)); err != nil {
		s.fail("save", err, "save_id", saveID, "path", path)
		return err
	}
	if err := writeFileAtomic(path, []byte(payload)); err != nil {
		return s.fail("save", err, "save_id", saveID, "path", path)
	}
	if err := s.persistMetadata(st, st.layout, meta); err != nil {
		if created {
			if _, rmErr := removeFile(path); rmErr != nil {
				s.logger.Warn("savestate: orphan payload not removed", "path", path, "error", rmErr)
			}
		}
		return s.fail("save", fmt.Errorf("metadata: %w", err), "save_id", saveID)
	}
	s.removeSiblings(path, p.Format.Extension())
	if !created && prevLayout != st.layout {
		s.removeLayoutData(st.root, saveID, prevLayout)
	}
	s.metrics.RecordBytes("save", len(payload))

	if st.layout == FolderBased {
		s.cacheValue(saveID, key, p.Format, value, text)
	}

	s.logger.Debug("savestate: saved", "save_id", saveID, "data_key", key, "path", path, "bytes", len(payload))
	return nil
}

// removeSiblings deletes payloads for the same entry written under another
// extension, so each entry has exactly one file on disk.
func (s *Store) removeSiblings(path, ext string) {
	base := path[:len(path)-len(ext)]
	for _, other := range knownExtensions() {
		if other == ext {
			continue
		}
		if _, err := removeFile(base + other); err != nil {
			s.logger.Warn("savestate: stale payload not removed", "path", base+other, "error", err)
		}
	}
}

// removeLayoutData deletes the payloads a save left under layout after it
// was re-saved under the other one, so stale entries are never listed or
// loaded again.
func (s *Store) removeLayoutData(root, saveID string, layout Layout) {
	if layout == FolderBased {
		s.data.DeletePrefix(dataCachePrefix(saveID))
		if err := os.RemoveAll(saveFolder(root, saveID)); err != nil {
			s.logger.Warn("savestate: stale save folder not removed", "save_id", saveID, "error", err)
		}
		return
	}
	for _, ext := range knownExtensions() {
		if _, err := removeFile(dataPath(root, SingleFile, ext, saveID, "")); err != nil {
			s.logger.Warn("savestate: stale payload not removed", "save_id", saveID, "error", err)
		}
	}
}

// cachedValue is a data cache slot: the codec text of the last saved or
// loaded value together with its dynamic type. Hits decode the text again,
// so callers never share maps or slices with the cache.
type cachedValue struct {
	typ    reflect.Type
	format Format
	text   string
}

// cacheValue records text for saveID/key. Protocol buffer messages are never
// cached.
func (s *Store) cacheValue(saveID, key string, f Format, value any, text string) {
	ck := dataCacheKey(saveID, key)
	if f == FormatProtobuf || value == nil {
		s.data.Delete(ck)
		return
	}
	t := reflect.TypeOf(value)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	s.data.Set(ck, cachedValue{typ: t, format: f, text: text})
}

// cachedLoad serves dest from the data cache when the cached type is
// assignable to what dest points at.
func (s *Store) cachedLoad(saveID, key string, dest any) bool {
	raw, ok := s.data.Get(dataCacheKey(saveID, key))
	if !ok {
		return false
	}
	cv, ok := raw.(cachedValue)
	if !ok {
		return false
	}
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Pointer || dv.IsNil() {
		return false
	}
	if !cv.typ.AssignableTo(dv.Elem().Type()) {
		return false
	}
	return decodeValue(cv.format, cv.text, dest) == nil
}
