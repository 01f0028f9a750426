package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("# detection service\nSLOTVIEW_TEST_URL=\"http://10.0.0.7:8000\"\nSLOTVIEW_TEST_KEEP=file\n"), 0o644))
	t.Setenv("SLOTVIEW_TEST_KEEP", "process")
	t.Setenv("SLOTVIEW_TEST_URL", "")
	require.NoError(t, os.Unsetenv("SLOTVIEW_TEST_URL"))

	require.NoError(t, Load(path))
	assert.Equal(t, "http://10.0.0.7:8000", os.Getenv("SLOTVIEW_TEST_URL"))
	assert.Equal(t, "process", os.Getenv("SLOTVIEW_TEST_KEEP"))
}

func TestLoadMissing(t *testing.T) {
	assert.NoError(t, Load(filepath.Join(t.TempDir(), ".env")))
}
