package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slot-viewer/internal/slots"
)

type fakeDetector struct {
	slots []slots.Slot
	err   error
	block bool
	calls chan string
}

func (f *fakeDetector) DetectSlots(ctx context.Context, name, mimeType string, data []byte) ([]slots.Slot, error) {
	if f.calls != nil {
		f.calls <- name
	}
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.slots, f.err
}

func pngReader(t *testing.T, w, h int) Reader {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	data := buf.Bytes()
	return func(context.Context, string) ([]byte, error) { return data, nil }
}

// collect reads events until the upload finishes (Completed or Failed) or the timeout expires.
func collect(t *testing.T, events <-chan Event, upload string) []Event {
	t.Helper()
	var out []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Upload != upload {
				continue
			}
			out = append(out, ev)
			if ev.Kind == Completed || ev.Kind == Failed {
				return out
			}
		case <-timeout:
			t.Fatalf("upload %s did not finish; got %d events", upload, len(out))
			return out
		}
	}
}

func TestUploadStreamsOverlays(t *testing.T) {
	events := make(chan Event, 16)
	det := &fakeDetector{slots: []slots.Slot{{X: 0, Y: 0, W: 1000, H: 500}, {X: 500, Y: 250, W: 100, H: 50}}}
	p := New(pngReader(t, 1000, 500), det, events, 0)
	defer p.Stop()

	id := p.Start("photos/shelf.png")
	got := collect(t, events, id)

	require.Len(t, got, 4)
	assert.Equal(t, BackgroundReady, got[0].Kind)
	assert.Equal(t, slots.ImageSize{W: 1000, H: 500}, got[0].Photo.Size)
	assert.Equal(t, "shelf.png", got[0].Photo.Name)

	assert.Equal(t, OverlayReady, got[1].Kind)
	assert.Equal(t, [3]float32{0, 1, 0}, got[1].Placement.Position)
	assert.Equal(t, [3]float32{4, 2, 4}, got[1].Placement.Scale)
	assert.Equal(t, OverlayReady, got[2].Kind)
	assert.Equal(t, slots.Slot{X: 500, Y: 250, W: 100, H: 50}, got[2].Slot)

	assert.Equal(t, Completed, got[3].Kind)
	assert.Equal(t, 2, got[3].Count)
}

func TestUploadNoSlots(t *testing.T) {
	events := make(chan Event, 4)
	p := New(pngReader(t, 8, 8), &fakeDetector{}, events, 0)
	defer p.Stop()

	got := collect(t, events, p.Start("empty.png"))
	require.Len(t, got, 2)
	assert.Equal(t, BackgroundReady, got[0].Kind)
	assert.Equal(t, Completed, got[1].Kind)
	assert.Zero(t, got[1].Count)
}

func TestUploadFailures(t *testing.T) {
	readErr := func(context.Context, string) ([]byte, error) { return nil, os.ErrNotExist }
	textRead := func(context.Context, string) ([]byte, error) { return []byte("hello"), nil }
	detectErr := errors.New("connection refused")

	cases := []struct {
		name     string
		read     Reader
		detector Detector
		stage    Stage
		want     error
		events   int
	}{
		{"read", readErr, &fakeDetector{}, StageRead, os.ErrNotExist, 1},
		{"decode", textRead, &fakeDetector{}, StageDecode, nil, 1},
		{"detect", pngReader(t, 4, 4), &fakeDetector{err: detectErr}, StageDetect, detectErr, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			events := make(chan Event, 4)
			p := New(tc.read, tc.detector, events, 0)
			defer p.Stop()

			id := p.Start("x.png")
			got := collect(t, events, id)
			require.Len(t, got, tc.events)
			last := got[len(got)-1]
			require.Equal(t, Failed, last.Kind)

			var se *StageError
			require.True(t, errors.As(last.Err, &se))
			assert.Equal(t, tc.stage, se.Stage)
			assert.Equal(t, id, se.Upload)
			if tc.want != nil {
				assert.True(t, errors.Is(last.Err, tc.want))
			}
		})
	}
}

func TestNewUploadCancelsPrevious(t *testing.T) {
	events := make(chan Event, 16)
	calls := make(chan string, 2)
	det := &fakeDetector{block: true, calls: calls}
	p := New(pngReader(t, 4, 4), det, events, 0)

	first := p.Start("first.png")
	<-calls // first upload is waiting on detection

	det2 := &fakeDetector{slots: []slots.Slot{{X: 1, Y: 1, W: 1, H: 1}}}
	p.detector = det2
	second := p.Start("second.png")
	got := collect(t, events, second)
	assert.Equal(t, Completed, got[len(got)-1].Kind)

	p.Stop()
	close(events)
	for ev := range events {
		if ev.Upload == first {
			assert.NotEqual(t, Failed, ev.Kind, "cancelled upload must not report a failure")
			assert.NotEqual(t, Completed, ev.Kind)
		}
	}
}

func TestCancelDoesNotWait(t *testing.T) {
	events := make(chan Event, 4)
	release := make(chan struct{})
	// A slow disk read that ignores ctx.
	slowRead := func(context.Context, string) ([]byte, error) {
		<-release
		return nil, os.ErrNotExist
	}
	p := New(slowRead, &fakeDetector{}, events, 0)
	p.Start("big.jpg")

	done := make(chan struct{})
	go func() {
		p.Cancel()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Cancel waited for the reader")
	}

	close(release)
	p.Stop()
	assert.Empty(t, events, "cancelled upload must not report")
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "read", StageRead.String())
	assert.Equal(t, "decode", StageDecode.String())
	assert.Equal(t, "detect", StageDetect.String())
	assert.Equal(t, "stage(9)", Stage(9).String())
}
