package savestate_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AndrewDonelson/savestate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata_CreatedOnFirstSave(t *testing.T) {
	s, clk := newStore(t)
	require.NoError(t, s.Save("slot1", "", &Player{}, savestate.WithName("Ayla"), savestate.WithDescription("chapter 2")))

	m, err := s.Metadata("slot1")
	require.NoError(t, err)
	assert.Equal(t, "slot1", m.SaveID)
	assert.Equal(t, "Ayla", m.Name)
	assert.Equal(t, "chapter 2", m.Description)
	assert.Equal(t, savestate.SingleFile, m.Layout)
	assert.Equal(t, savestate.FormatJSON, m.Format)
	assert.True(t, m.CreatedAt.Equal(epoch))

	clk.Advance(time.Hour)
	require.NoError(t, s.Save("slot1", "", &Player{}))
	m, err = s.Metadata("slot1")
	require.NoError(t, err)
	assert.Equal(t, "Ayla", m.Name, "name kept when not given")
	assert.True(t, m.CreatedAt.Equal(epoch))
	assert.True(t, m.ModifiedAt.Equal(epoch.Add(time.Hour)))
}

func TestMetadata_NameDefaultsToID(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.Save("slot1", "", &Player{}))
	m, err := s.Metadata("slot1")
	require.NoError(t, err)
	assert.Equal(t, "slot1", m.Name)
}

func TestMetadata_RecordsPipeline(t *testing.T) {
	s, _ := newStore(t, folder, func(c *savestate.Config) {
		c.Format = savestate.FormatMsgPack
		c.Compression = true
		c.Encryption = savestate.EncryptionConfig{Enabled: true, Key: "pw"}
	})
	require.NoError(t, s.Save("slot1", "inventory", &Inventory{}))

	m, err := s.Metadata("slot1")
	require.NoError(t, err)
	assert.Equal(t, savestate.FolderBased, m.Layout)
	assert.Equal(t, savestate.FormatMsgPack, m.Format)
	assert.True(t, m.Encrypted)
	assert.True(t, m.Compressed)
	require.Contains(t, m.Entries, "inventory")
	assert.Equal(t, savestate.FormatMsgPack, m.Entries["inventory"].Format)
}

func TestMetadata_ReadFromDiskByFreshStore(t *testing.T) {
	s, _ := newStore(t, func(c *savestate.Config) {
		c.Encryption = savestate.EncryptionConfig{Enabled: true, Key: "pw"}
	})
	require.NoError(t, s.Save("slot1", "", &Player{}, savestate.WithName("Ayla")))

	// Other layout and no encryption enabled, only the key held.
	fresh, err := savestate.New(savestate.Config{
		RootPath:   s.RootPath(),
		Layout:     savestate.FolderBased,
		Encryption: savestate.EncryptionConfig{Key: "pw"},
	})
	require.NoError(t, err)
	defer fresh.Close()

	m, err := fresh.Metadata("slot1")
	require.NoError(t, err)
	assert.Equal(t, "Ayla", m.Name)
	assert.True(t, m.Encrypted)
}

func TestMetadata_MovesWithLayout(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.Save("slot1", "", &Player{}))
	single := filepath.Join(s.RootPath(), "slot1_metadata.json")
	assert.FileExists(t, single)

	require.NoError(t, s.SetLayout(savestate.FolderBased))
	require.NoError(t, s.Save("slot1", "", &Player{}))
	assert.NoFileExists(t, single)
	assert.FileExists(t, filepath.Join(s.RootPath(), "slot1", "_metadata.json"))
}

func TestSetMetadata(t *testing.T) {
	s, clk := newStore(t)
	assert.ErrorIs(t, s.SetMetadata("slot1", "x", ""), savestate.ErrNotFound)

	require.NoError(t, s.Save("slot1", "", &Player{}, savestate.WithDescription("old")))
	clk.Advance(time.Minute)
	require.NoError(t, s.SetMetadata("slot1", "Renamed", ""))

	m, err := s.Metadata("slot1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", m.Name)
	assert.Equal(t, "old", m.Description)
	assert.True(t, m.ModifiedAt.Equal(epoch.Add(time.Minute)))
}

func TestMetadata_CorruptIsHardError(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.RootPath(), "slot1_metadata.json"), []byte("{broken"), 0o600))

	_, err := s.Metadata("slot1")
	assert.ErrorIs(t, err, savestate.ErrDecodeFailed)

	var p Player
	assert.ErrorIs(t, s.Load("slot1", "", &p), savestate.ErrDecodeFailed)
}

func TestMetadata_NotFound(t *testing.T) {
	s, _ := newStore(t)
	_, err := s.Metadata("nope")
	assert.ErrorIs(t, err, savestate.ErrNotFound)
	_, err = s.Metadata("bad/id")
	assert.ErrorIs(t, err, savestate.ErrInvalidSaveID)
}
