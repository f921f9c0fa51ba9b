package results

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/medalbound/internal/ports"
)

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	c := NewFileCache(root)

	_, ok, err := c.Get(ctx, "imo-2019/IMO_Individual.xml")
	require.NoError(t, err)
	assert.False(t, ok, "empty cache misses")

	require.NoError(t, c.Set(ctx, "imo-2019/IMO_Individual.xml", []byte("<results/>")))
	data, ok, err := c.Get(ctx, "imo-2019/IMO_Individual.xml")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "<results/>", string(data))

	onDisk, err := os.ReadFile(filepath.Join(root, "imo-2019", "IMO_Individual.xml"))
	require.NoError(t, err)
	assert.Equal(t, data, onDisk)

	entries, err := os.ReadDir(filepath.Join(root, "imo-2019"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")
}

func TestFileCache_RejectsEscapingKeys(t *testing.T) {
	c := NewFileCache(t.TempDir())
	for _, key := range []string{"../outside", "/etc/passwd", ""} {
		t.Run(key, func(t *testing.T) {
			err := c.Set(context.Background(), key, []byte("x"))
			var ce *ports.CacheError
			require.ErrorAs(t, err, &ce)
			assert.ErrorIs(t, err, ports.ErrCacheCorrupted)
		})
	}
}

func TestFileCache_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewFileCache(t.TempDir())
	_, _, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, c.Set(ctx, "k", nil), context.Canceled)
}
