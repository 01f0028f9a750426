package primitives

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefMissing(t *testing.T) {
	def, err := LoadDef(filepath.Join(t.TempDir(), "box.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), def)
}

func TestLoadDef(t *testing.T) {
	path := filepath.Join(t.TempDir(), "box.yaml")
	require.NoError(t, os.WriteFile(path, []byte("type: cube\nsize: [1, 0, 2]\ncolor: \"#336699\"\n"), 0o644))

	def, err := LoadDef(path)
	require.NoError(t, err)
	assert.Equal(t, [3]float32{1, 1, 2}, def.Size, "non-positive sides become 1")
	assert.Equal(t, [4]uint8{0x33, 0x66, 0x99, 255}, def.RGBA())
	assert.True(t, def.Wires, "unset fields keep defaults")
}

func TestLoadDefUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "box.yaml")
	require.NoError(t, os.WriteFile(path, []byte("type: teapot\n"), 0o644))

	def, err := LoadDef(path)
	assert.Error(t, err)
	assert.Equal(t, Default(), def)
}

func TestRGBA(t *testing.T) {
	assert.Equal(t, [4]uint8{255, 140, 26, 180}, Default().RGBA())
	assert.Equal(t, [4]uint8{1, 2, 3, 4}, Def{Color: "01020304"}.RGBA())
	assert.Equal(t, Default().RGBA(), Def{Color: "orange"}.RGBA())
}
