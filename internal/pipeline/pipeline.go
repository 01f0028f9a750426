package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"slot-viewer/internal/download"
	"slot-viewer/internal/photo"
	"slot-viewer/internal/slots"
)

// Stage names one step of an upload.
type Stage int

const (
	StageRead Stage = iota
	StageDecode
	StageDetect
)

func (s Stage) String() string {
	switch s {
	case StageRead:
		return "read"
	case StageDecode:
		return "decode"
	case StageDetect:
		return "detect"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// StageError is the failure of one upload at one stage.
type StageError struct {
	Stage  Stage
	Upload string
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("upload %s: %s: %v", e.Upload, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Kind tells which fields of an Event are set.
type Kind int

const (
	// BackgroundReady carries Photo. The scene is reset to this photo.
	BackgroundReady Kind = iota
	// OverlayReady carries Slot and Placement for one detected slot.
	OverlayReady
	// Completed carries Count, the number of slots returned.
	Completed
	// Failed carries Err, always a *StageError.
	Failed
)

// Event is sent from an upload goroutine to the main thread. Upload identifies the upload it belongs to.
type Event struct {
	Kind      Kind
	Upload    string
	Photo     *photo.Photo
	Slot      slots.Slot
	Placement slots.Placement
	Count     int
	Err       error
}

// Reader reads the raw bytes of a selected file or URL. It should return early when ctx is cancelled.
type Reader func(ctx context.Context, path string) ([]byte, error)

// Detector returns the slots found in an image.
type Detector interface {
	DetectSlots(ctx context.Context, name, mimeType string, data []byte) ([]slots.Slot, error)
}

// Pipeline runs uploads one at a time: starting a new upload cancels the one in flight.
// Events are delivered on the channel given to New, in stage order for a single upload.
type Pipeline struct {
	read       Reader
	detector   Detector
	events     chan<- Event
	maxTexture int

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New returns a Pipeline. read may be nil to read local files with photo.Read. maxTexture is passed to photo.Decode.
func New(read Reader, detector Detector, events chan<- Event, maxTexture int) *Pipeline {
	if read == nil {
		read = func(_ context.Context, path string) ([]byte, error) { return photo.Read(path) }
	}
	return &Pipeline{
		read:       read,
		detector:   detector,
		events:     events,
		maxTexture: maxTexture,
	}
}

// Start cancels any upload in flight and begins a new one for path. Returns the new upload ID.
func (p *Pipeline) Start(path string) string {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())

	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.cancel = cancel
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.run(ctx, id, path)
	}()
	return id
}

// Cancel cancels the upload in flight, if any, and returns at once. A reader or decoder that is
// still busy finishes in the background; its events are never sent.
func (p *Pipeline) Cancel() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()
}

// Stop cancels the upload in flight, if any, and waits for its goroutine to return.
func (p *Pipeline) Stop() {
	p.Cancel()
	p.wg.Wait()
}

func (p *Pipeline) run(ctx context.Context, id, path string) {
	data, err := p.read(ctx, path)
	if err != nil {
		p.fail(ctx, id, StageRead, err)
		return
	}
	if ctx.Err() != nil {
		return
	}
	name := path
	if download.IsURL(path) {
		name = download.FileName(path)
	}
	ph, err := photo.Decode(name, data, p.maxTexture)
	if err != nil {
		p.fail(ctx, id, StageDecode, err)
		return
	}
	if !p.send(ctx, Event{Kind: BackgroundReady, Upload: id, Photo: ph}) {
		return
	}

	found, err := p.detector.DetectSlots(ctx, ph.Name, ph.MIME, ph.Data)
	if err != nil {
		p.fail(ctx, id, StageDetect, err)
		return
	}
	// Overlays are streamed one by one; the scene shows each as soon as it arrives.
	for _, s := range found {
		ev := Event{
			Kind:      OverlayReady,
			Upload:    id,
			Slot:      s,
			Placement: slots.Place(slots.ToScene(s, ph.Size)),
		}
		if !p.send(ctx, ev) {
			return
		}
	}
	p.send(ctx, Event{Kind: Completed, Upload: id, Count: len(found)})
}

func (p *Pipeline) fail(ctx context.Context, id string, stage Stage, err error) {
	p.send(ctx, Event{Kind: Failed, Upload: id, Err: &StageError{Stage: stage, Upload: id, Err: err}})
}

// send delivers ev unless the upload has been cancelled. Returns false when cancelled.
func (p *Pipeline) send(ctx context.Context, ev Event) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case p.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
