// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// metadata.go — per-save metadata records: creation, lookup across both
// layouts, JSON persistence (always JSON, encrypted with the data when
// encryption is on) and the metadata cache.

package savestate

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"strings"
	"time"
)

// EntryRecord describes how one folder-layout entry was last written.
type EntryRecord struct {
	Format     Format    `json:"format"`
	Encrypted  bool      `json:"encrypted"`
	Compressed bool      `json:"compressed"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Metadata is the descriptive and bookkeeping record kept for every save.
// Layout, Format, Encrypted and Compressed reflect the most recent save.
type Metadata struct {
	SaveID      string                 `json:"save_id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Layout      Layout                 `json:"layout"`
	Format      Format                 `json:"format"`
	Encrypted   bool                   `json:"encrypted"`
	Compressed  bool                   `json:"compressed"`
	CreatedAt   time.Time              `json:"created_at"`
	ModifiedAt  time.Time              `json:"modified_at"`
	Entries     map[string]EntryRecord `json:"entries,omitempty"`
}

// newMetadata returns a record with Name defaulted to saveID.
func newMetadata(saveID, name, description string, now time.Time) *Metadata {
	if name == "" {
		name = saveID
	}
	return &Metadata{
		SaveID:      saveID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		ModifiedAt:  now,
	}
}

func (m *Metadata) clone() *Metadata {
	c := *m
	c.Entries = maps.Clone(m.Entries)
	return &c
}

// pipelineFor returns how entry key was encoded: the entry record when one
// exists in folder layout, otherwise the save-level fields.
func (m *Metadata) pipelineFor(key string) pipeline {
	if m.Layout == FolderBased {
		if e, ok := m.Entries[normalizeKey(key)]; ok {
			return pipeline{Format: e.Format, Compressed: e.Compressed, Encrypted: e.Encrypted}
		}
	}
	return pipeline{Format: m.Format, Compressed: m.Compressed, Encrypted: m.Encrypted}
}

// metadataPipeline encodes metadata: JSON regardless of the data codec.
func metadataPipeline(encrypted bool) pipeline {
	return pipeline{Format: FormatJSON, Encrypted: encrypted}
}

// readMetadataFile decodes one metadata file. Plain JSON starts with '{',
// which base64 cipher output never does, so encryption is detected from the
// content rather than from the current settings.
func readMetadataFile(path string, ciph *PassphraseCipher) (*Metadata, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	text := string(b)
	encrypted := !strings.HasPrefix(strings.TrimSpace(text), "{")
	m := &Metadata{}
	if err := decodePayload(metadataPipeline(encrypted), ciph, text, m); err != nil {
		return nil, fmt.Errorf("metadata %s: %w", path, err)
	}
	return m, nil
}

// loadMetadata returns the record for saveID, looking in the cache, then at
// the current layout's location, then at the other layout's location.
func (s *Store) loadMetadata(st settings, saveID string) (*Metadata, error) {
	if v, ok := s.meta.Get(saveID); ok {
		s.metrics.RecordHit("metadata")
		return v.(*Metadata).clone(), nil
	}
	s.metrics.RecordMiss("metadata")

	for _, l := range []Layout{st.layout, otherLayout(st.layout)} {
		m, err := readMetadataFile(metadataPath(st.root, l, saveID), st.cipher)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		s.meta.Set(saveID, m.clone())
		return m, nil
	}
	return nil, ErrNotFound
}

// getOrCreateMetadata loads the record for saveID or creates a fresh one,
// reporting whether it was created. Name and description only replace
// existing values when non-empty.
func (s *Store) getOrCreateMetadata(st settings, saveID, name, description string) (*Metadata, bool, error) {
	m, err := s.loadMetadata(st, saveID)
	switch {
	case errors.Is(err, ErrNotFound):
		return newMetadata(saveID, name, description, s.now()), true, nil
	case err != nil:
		return nil, false, err
	}
	if name != "" {
		m.Name = name
	}
	if description != "" {
		m.Description = description
	}
	if m.Name == "" {
		m.Name = saveID
	}
	return m, false, nil
}

// persistMetadata writes m at its location under layout and removes a stale
// record left at the other layout's location.
func (s *Store) persistMetadata(st settings, layout Layout, m *Metadata) error {
	payload, err := encodePayload(metadataPipeline(st.encrypted), st.cipher, m)
	if err != nil {
		return err
	}
	path := metadataPath(st.root, layout, m.SaveID)
	if err := ensureDir(parentDir(path)); err != nil {
		return err
	}
	if err := writeFileAtomic(path, []byte(payload)); err != nil {
		return err
	}
	if _, err := removeFile(metadataPath(st.root, otherLayout(layout), m.SaveID)); err != nil {
		s.logger.Warn("savestate: stale metadata not removed", "save_id", m.SaveID, "error", err)
	}
	s.meta.Set(m.SaveID, m.clone())
	return nil
}

// Metadata returns the record stored for saveID.
func (s *Store) Metadata(saveID string) (*Metadata, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if err := ValidateSaveID(saveID); err != nil {
		return nil, err
	}
	m, err := s.loadMetadata(s.settings(), saveID)
	if errors.Is(err, ErrNotFound) {
		s.logger.Warn("savestate: metadata not found", "save_id", saveID)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, saveID)
	}
	return m, err
}

// SetMetadata updates the name and description of an existing save. Empty
// values keep the current ones.
func (s *Store) SetMetadata(saveID, name, description string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := ValidateSaveID(saveID); err != nil {
		return err
	}
	unlock := s.lockSave(saveID)
	defer unlock()

	st := s.settings()
	m, err := s.loadMetadata(st, saveID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, saveID)
		}
		return err
	}
	if name != "" {
		m.Name = name
	}
	if description != "" {
		m.Description = description
	}
	m.ModifiedAt = s.now()
	if err := s.persistMetadata(st, m.Layout, m); err != nil {
		return s.fail("metadata", err, "save_id", saveID)
	}
	return nil
}
