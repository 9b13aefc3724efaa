// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// load.go — Load and LoadAs: reads a save with the layout and pipeline
// recorded in its metadata, serving folder entries from the data cache.

package savestate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"time"
)

// Load decodes entry dataKey of saveID into dest, which must be a pointer
// (or a proto.Message for FormatProtobuf). The layout, codec, compression
// and encryption used are the ones recorded when the entry was saved, so a
// save stays readable after the live configuration changes. A save without
// metadata is read with the live settings.
//
// Missing saves return an error wrapping ErrNotFound.
func (s *Store) Load(saveID, dataKey string, dest any) error {
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
	if dest == nil {
		return fmt.Errorf("%w: nil destination", ErrDecodeFailed)
	}

	s.stats.Loads.Add(1)
	start := time.Now()
	defer func() { s.metrics.RecordLatency("load", time.Since(start)) }()

	st := s.settings()
	layout, p, err := s.effective(st, saveID, key)
	if errors.Is(err, ErrNotFound) {
		s.logger.Warn("savestate: save not found", "save_id", saveID, "data_key", key)
		return err
	}
	if err != nil {
		return s.fail("load", err, "save_id", saveID, "data_key", key)
	}

	if layout == FolderBased {
		if s.cachedLoad(saveID, key, dest) {
			s.metrics.RecordHit("data")
			return nil
		}
		s.metrics.RecordMiss("data")
	}

	path := dataPath(st.root, layout, p.Format.Extension(), saveID, key)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("savestate: save not found", "save_id", saveID, "data_key", key, "path", path)
			return fmt.Errorf("%w: %s/%s", ErrNotFound, saveID, key)
		}
		return s.fail("load", err, "save_id", saveID, "path", path)
	}

	text, err := unseal(p, st.cipher, string(b))
	if err != nil {
		return s.fail("load", err, "save_id", saveID, "data_key", key)
	}
	if err := decodeValue(p.Format, text, dest); err != nil {
		return s.fail("load", err, "save_id", saveID, "data_key", key)
	}
	s.metrics.RecordBytes("load", len(b))

	if layout == FolderBased {
		s.cacheValue(saveID, key, p.Format, dest, text)
	}
	s.logger.Debug("savestate: loaded", "save_id", saveID, "data_key", key, "path", path)
	return nil
}

// LoadAs is the generic form of Load. When T is a pointer type a new value
// is allocated for it.
func LoadAs[T any](s *Store, saveID, dataKey string) (T, error) {
	var v T
	if rt := reflect.TypeOf(v); rt != nil && rt.Kind() == reflect.Pointer {
		ptr := reflect.New(rt.Elem()).Interface().(T)
		if err := s.Load(saveID, dataKey, ptr); err != nil {
			return v, err
		}
		return ptr, nil
	}
	if err := s.Load(saveID, dataKey, &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// effective resolves the layout and pipeline that apply to saveID/key: the
// metadata record when there is one, the live settings otherwise. Metadata
// that exists but cannot be read is a hard error. A save recorded as a
// single file holds only the default entry; other keys are not found.
func (s *Store) effective(st settings, saveID, key string) (Layout, pipeline, error) {
	m, err := s.loadMetadata(st, saveID)
	switch {
	case errors.Is(err, ErrNotFound):
		return st.layout, st.pipeline(), nil
	case err != nil:
		return 0, pipeline{}, err
	}
	if err := checkSingleFileKey(m, key); err != nil {
		return 0, pipeline{}, err
	}
	return m.Layout, m.pipelineFor(key), nil
}

func checkSingleFileKey(m *Metadata, key string) error {
	if m.Layout == SingleFile && key != "" && key != DefaultDataKey {
		return fmt.Errorf("%w: %s/%s: single-file save has no entry %q", ErrNotFound, m.SaveID, key, key)
	}
	return nil
}
