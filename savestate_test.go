package savestate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AndrewDonelson/savestate"
	"github.com/AndrewDonelson/savestate/internal/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Fixtures ────────────────────────────────────────────────────────────────

type Player struct {
	Name  string
	Level int
	HP    float64
	Tags  []string
}

type Inventory struct {
	Slots map[string]int
	Gold  int64
}

var epoch = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func newStore(t *testing.T, mutate ...func(*savestate.Config)) (*savestate.Store, *clock.Mock) {
	t.Helper()
	clk := clock.NewMock(epoch)
	cfg := savestate.Config{RootPath: t.TempDir(), Clock: clk}
	for _, m := range mutate {
		m(&cfg)
	}
	s, err := savestate.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, clk
}

func folder(c *savestate.Config) { c.Layout = savestate.FolderBased }

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

// ── Construction and configuration ─────────────────────────────────────────

func TestNew_Defaults(t *testing.T) {
	s, _ := newStore(t)
	cfg := s.Config()
	assert.Equal(t, savestate.SingleFile, cfg.Layout)
	assert.Equal(t, savestate.FormatJSON, cfg.Format)
	assert.False(t, cfg.Encryption.Enabled)
	assert.False(t, cfg.Compression)
	assert.DirExists(t, s.RootPath())
}

func TestNew_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "saves")
	s, err := savestate.New(savestate.Config{RootPath: root})
	require.NoError(t, err)
	defer s.Close()
	assert.DirExists(t, root)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := savestate.New(savestate.Config{RootPath: t.TempDir(), Format: savestate.Format(42)})
	assert.ErrorIs(t, err, savestate.ErrInvalidConfig)
	assert.ErrorIs(t, err, savestate.ErrUnsupportedFormat)

	_, err = savestate.New(savestate.Config{RootPath: t.TempDir(), Layout: savestate.Layout(7)})
	assert.ErrorIs(t, err, savestate.ErrInvalidLayout)

	_, err = savestate.New(savestate.Config{
		RootPath:   t.TempDir(),
		Encryption: savestate.EncryptionConfig{Enabled: true},
	})
	assert.ErrorIs(t, err, savestate.ErrNoEncryptionKey)
}

func TestNew_RootIsAFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o600))
	_, err := savestate.New(savestate.Config{RootPath: f})
	assert.Error(t, err)
}

func TestSetRootPath(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.Save("slot1", "", &Player{Name: "a"}))

	next := filepath.Join(t.TempDir(), "other")
	require.NoError(t, s.SetRootPath(next))
	assert.Equal(t, next, s.RootPath())
	assert.DirExists(t, next)

	var p Player
	assert.ErrorIs(t, s.Load("slot1", "", &p), savestate.ErrNotFound)

	assert.ErrorIs(t, s.SetRootPath(""), savestate.ErrInvalidConfig)
}

func TestSetters(t *testing.T) {
	s, _ := newStore(t)

	require.NoError(t, s.SetFormat(savestate.FormatMsgPack))
	require.NoError(t, s.SetLayout(savestate.FolderBased))
	require.NoError(t, s.SetCompression(true))
	cfg := s.Config()
	assert.Equal(t, savestate.FormatMsgPack, cfg.Format)
	assert.Equal(t, savestate.FolderBased, cfg.Layout)
	assert.True(t, cfg.Compression)

	assert.ErrorIs(t, s.SetFormat(savestate.Format(9)), savestate.ErrUnsupportedFormat)
	assert.ErrorIs(t, s.SetLayout(savestate.Layout(9)), savestate.ErrInvalidLayout)
	assert.ErrorIs(t, s.SetEncryption(true, ""), savestate.ErrNoEncryptionKey)
	assert.False(t, s.Config().Encryption.Enabled)

	require.NoError(t, s.SetEncryption(true, "pw"))
	assert.True(t, s.Config().Encryption.Enabled)
	require.NoError(t, s.SetEncryption(false, ""))
	assert.Equal(t, "pw", s.Config().Encryption.Key)
	require.NoError(t, s.SetEncryption(true, ""))
}

func TestPathAccessors(t *testing.T) {
	s, _ := newStore(t)
	root := s.RootPath()

	p, err := s.SavePath("slot1", "ignored")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "slot1.json"), p)

	mp, err := s.MetadataPath("slot1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "slot1_metadata.json"), mp)

	require.NoError(t, s.SetLayout(savestate.FolderBased))
	require.NoError(t, s.SetFormat(savestate.FormatBinary))
	p, err = s.SavePath("slot1", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "slot1", "main.sav"), p)

	fp, err := s.SaveFolderPath("slot1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "slot1"), fp)

	mp, err = s.MetadataPath("slot1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "slot1", "_metadata.json"), mp)

	_, err = s.SavePath("../x", "")
	assert.ErrorIs(t, err, savestate.ErrInvalidSaveID)
	_, err = s.SavePath("slot1", savestate.MetadataKey)
	assert.ErrorIs(t, err, savestate.ErrReservedKey)
}

func TestClose(t *testing.T) {
	s, err := savestate.New(savestate.Config{RootPath: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Save("a", "", &Player{}), savestate.ErrClosed)
	var p Player
	assert.ErrorIs(t, s.Load("a", "", &p), savestate.ErrClosed)
	_, err = s.List()
	assert.ErrorIs(t, err, savestate.ErrClosed)
}

func TestStats(t *testing.T) {
	s, _ := newStore(t, folder)
	require.NoError(t, s.Save("slot1", "", &Player{Name: "a"}))
	var p Player
	require.NoError(t, s.Load("slot1", "", &p))
	_ = s.Load("missing", "", &p)
	_, _ = s.Delete("slot1", "")

	st := s.Stats()
	assert.Equal(t, int64(1), st.Saves)
	assert.Equal(t, int64(2), st.Loads)
	assert.Equal(t, int64(1), st.Deletes)
	assert.Positive(t, st.CacheHits)
}

func TestNewSaveID(t *testing.T) {
	a, b := savestate.NewSaveID(), savestate.NewSaveID()
	assert.NotEqual(t, a, b)
	assert.NoError(t, savestate.ValidateSaveID(a))
	assert.Len(t, a, 36)
	assert.True(t, strings.Count(a, "-") == 4)
}

func TestDefaultRootPath(t *testing.T) {
	p := savestate.DefaultRootPath()
	assert.True(t, strings.HasSuffix(p, filepath.Join("savestate", "saves")) || p == "saves")
}

func TestPrometheusMetricsWired(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := savestate.NewPrometheusMetrics(reg)
	require.NoError(t, err)

	s, _ := newStore(t, folder, func(c *savestate.Config) { c.Metrics = m })
	require.NoError(t, s.Save("slot1", "", &Player{Name: "a"}))
	var p Player
	require.NoError(t, s.Load("slot1", "", &p))
	assert.ErrorIs(t, s.Save("slot1", "", 1), savestate.ErrEncodeFailed)

	for _, name := range []string{
		"savestate_operation_duration_seconds",
		"savestate_payload_bytes_total",
		"savestate_cache_hits_total",
		"savestate_errors_total",
	} {
		n, err := testutil.GatherAndCount(reg, name)
		require.NoError(t, err)
		assert.Positive(t, n, name)
	}
}
