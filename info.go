// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// info.go — SaveInfo descriptors and the path accessors. Nothing here
// writes to disk.

package savestate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
)

// SaveInfo describes a save, or one entry of it, as found on disk.
type SaveInfo struct {
	SaveID  string
	DataKey string // empty when the whole save is described
	Path    string
	Layout  Layout
	Format  Format

	SizeBytes  int64
	CreatedAt  time.Time
	ModifiedAt time.Time

	// Entries is the number of payload files included in SizeBytes.
	Entries int
}

// FormattedSize returns SizeBytes in human-readable IEC units.
func (i *SaveInfo) FormattedSize() string {
	return humanize.IBytes(uint64(i.SizeBytes))
}

// Info returns size and timestamps for a save. Sizes and write times come
// from the filesystem; creation and modification times are taken from the
// metadata record when there is one. In folder layout an empty dataKey sums
// every entry (the metadata file excluded) and reports the latest write.
func (s *Store) Info(saveID, dataKey string) (*SaveInfo, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if err := ValidateSaveID(saveID); err != nil {
		return nil, err
	}
	if dataKey != "" {
		if err := ValidateDataKey(dataKey); err != nil {
			return nil, err
		}
	}

	st := s.settings()
	m, err := s.loadMetadata(st, saveID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, s.fail("info", err, "save_id", saveID)
	}
	layout, p := st.layout, st.pipeline()
	if m != nil {
		if err := checkSingleFileKey(m, dataKey); err != nil {
			s.logger.Warn("savestate: save not found", "save_id", saveID, "data_key", dataKey)
			return nil, err
		}
		layout, p = m.Layout, m.pipelineFor(dataKey)
	}

	info := &SaveInfo{SaveID: saveID, Layout: layout, Format: p.Format}
	if layout == FolderBased && dataKey == "" {
		err = folderInfo(saveFolder(st.root, saveID), info)
	} else {
		if layout == FolderBased {
			info.DataKey = dataKey
		}
		err = fileInfo(dataPath(st.root, layout, p.Format.Extension(), saveID, dataKey), info)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("savestate: save not found", "save_id", saveID, "data_key", dataKey)
			return nil, fmt.Errorf("%w: %s", ErrNotFound, saveID)
		}
		return nil, s.fail("info", err, "save_id", saveID)
	}

	if m != nil {
		info.CreatedAt = m.CreatedAt
		info.ModifiedAt = m.ModifiedAt
		if e, ok := m.Entries[dataKey]; ok && layout == FolderBased {
			info.ModifiedAt = e.ModifiedAt
		}
	}
	return info, nil
}

// Exists reports whether Info would find the save or entry.
func (s *Store) Exists(saveID, dataKey string) bool {
	_, err := s.Info(saveID, dataKey)
	return err == nil
}

func fileInfo(path string, info *SaveInfo) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	info.Path = path
	info.SizeBytes = fi.Size()
	info.CreatedAt = fi.ModTime().UTC()
	info.ModifiedAt = fi.ModTime().UTC()
	info.Entries = 1
	return nil
}

func folderInfo(dir string, info *SaveInfo) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	info.Path = dir
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || isHidden(name) || !isPayloadFile(name) || stem(name) == MetadataKey {
			continue
		}
		fi, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		info.SizeBytes += fi.Size()
		info.Entries++
		if mt := fi.ModTime().UTC(); mt.After(info.ModifiedAt) {
			info.ModifiedAt = mt
		}
	}
	info.CreatedAt = info.ModifiedAt
	return nil
}

// SavePath returns where entry dataKey of saveID is written under the live
// layout and format.
func (s *Store) SavePath(saveID, dataKey string) (string, error) {
	if err := ValidateSaveID(saveID); err != nil {
		return "", err
	}
	if err := ValidateDataKey(normalizeKey(dataKey)); err != nil {
		return "", err
	}
	st := s.settings()
	return dataPath(st.root, st.layout, st.format.Extension(), saveID, dataKey), nil
}

// SaveFolderPath returns the directory of a folder-layout save.
func (s *Store) SaveFolderPath(saveID string) (string, error) {
	if err := ValidateSaveID(saveID); err != nil {
		return "", err
	}
	return saveFolder(s.RootPath(), saveID), nil
}

// MetadataPath returns where the metadata record of saveID is written under
// the live layout.
func (s *Store) MetadataPath(saveID string) (string, error) {
	if err := ValidateSaveID(saveID); err != nil {
		return "", err
	}
	st := s.settings()
	return metadataPath(st.root, st.layout, saveID), nil
}
