package detect

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slot-viewer/internal/slots"
)

func TestDetectSlotsRequest(t *testing.T) {
	var gotName, gotType string
	var gotData []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, Path, r.URL.Path)
		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotName = header.Filename
		gotType = header.Header.Get("Content-Type")
		gotData, _ = io.ReadAll(file)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"slots":[{"x":10,"y":20,"w":30,"h":40},{"x":1.5,"y":0,"w":2,"h":2}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	got, err := c.DetectSlots(context.Background(), "shelf.jpg", "image/jpeg", []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, []slots.Slot{{X: 10, Y: 20, W: 30, H: 40}, {X: 1.5, Y: 0, W: 2, H: 2}}, got)
	assert.Equal(t, "shelf.jpg", gotName)
	assert.Equal(t, "image/jpeg", gotType)
	assert.Equal(t, []byte("jpeg-bytes"), gotData)
}

func TestDetectSlotsFilenameEscaping(t *testing.T) {
	var gotName string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile(FileField)
		if assert.NoError(t, err) {
			gotName = header.Filename
		}
		_, _ = w.Write([]byte(`{"slots":[]}`))
	}))
	defer srv.Close()

	name := "prateleira \"A\" n\u00ba 1 caf\u00e9.png"
	_, err := NewClient(srv.URL, time.Second).DetectSlots(context.Background(), name, "image/png", []byte{1})
	require.NoError(t, err)
	assert.Equal(t, name, gotName)
}

func TestDetectSlotsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"slots":[]}`))
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL, 0).DetectSlots(context.Background(), "a.png", "image/png", []byte{1})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDetectSlotsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0).DetectSlots(context.Background(), "a.png", "image/png", []byte{1})
	var se *StatusError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.Equal(t, "model not loaded", se.Body)
	assert.Equal(t, "detect: HTTP 503: model not loaded", se.Error())
}

func TestDetectSlotsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"slots":[{"x":"left"}]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0).DetectSlots(context.Background(), "a.png", "image/png", []byte{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "detect: decode response")
}

func TestDetectSlotsCanceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(srv.URL, 0).DetectSlots(ctx, "a.png", "image/png", []byte{1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}
