package logger

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInfoAndError(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewWithCore(core)

	l.Info("photo loaded", "width", 800, "height", 600)
	l.Error("upload failed", errors.New("connection refused"), "stage", "detect")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "photo loaded", entries[0].Message)
	assert.Equal(t, int64(800), entries[0].ContextMap()["width"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "detect", entries[1].ContextMap()["stage"])

	lines := l.Lines()
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], "] photo loaded width=800 height=600"), lines[0])
	assert.True(t, strings.HasSuffix(lines[1], "] upload failed stage=detect: connection refused"), lines[1])
}

func TestLinesBounded(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	l := NewWithCore(core)
	for i := 0; i < maxLines+25; i++ {
		l.Log(fmt.Sprintf("line %d", i))
	}
	lines := l.Lines()
	require.Len(t, lines, maxLines)
	assert.True(t, strings.HasSuffix(lines[0], "line 25"), lines[0])
	assert.True(t, strings.HasSuffix(lines[maxLines-1], fmt.Sprintf("line %d", maxLines+24)))
}

func TestLinesIsCopy(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	l := NewWithCore(core)
	l.Log("a")
	lines := l.Lines()
	lines[0] = "changed"
	assert.NotEqual(t, "changed", l.Lines()[0])
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "viewer.log")
	l := New(path)
	l.Log("started")
	_ = l.Close()
	assert.FileExists(t, path)
}
