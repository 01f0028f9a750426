package app

import (
	"errors"
	"flag"

	"slot-viewer/internal/commands"
	"slot-viewer/internal/config"
	"slot-viewer/internal/download"
	"slot-viewer/internal/hud"
	"slot-viewer/internal/logger"
	"slot-viewer/internal/pipeline"
	"slot-viewer/internal/primitives"
	"slot-viewer/internal/render"
	"slot-viewer/internal/scene"
	"slot-viewer/internal/viewport"
)

// eventBuffer is how many pipeline events may queue between two frames.
const eventBuffer = 64

const hint = "Drop a photo on the window, or press ESC and type its path or URL"

// App owns all viewer state: viewport, scene, upload pipeline, renderer, and HUD.
// Everything except the pipeline goroutines runs on the main thread.
type App struct {
	cfg    config.Config
	log    *logger.Logger
	view   *viewport.Viewport
	scene  *scene.Scene
	pipe   *pipeline.Pipeline
	events chan pipeline.Event
	rnd    *render.Renderer
	hud    *hud.HUD
	reg    *commands.Registry

	lastPath string
}

// New builds the viewer. detector is the slot detection client.
func New(cfg config.Config, log *logger.Logger, detector pipeline.Detector) *App {
	def, err := primitives.LoadDef(cfg.PlaceholderPath)
	if err != nil {
		log.Error("placeholder definition", err, "path", cfg.PlaceholderPath)
	}
	events := make(chan pipeline.Event, eventBuffer)
	a := &App{
		cfg:    cfg,
		log:    log,
		view:   viewport.New(cfg.WindowWidth, cfg.WindowHeight),
		scene:  scene.New(),
		pipe:   pipeline.New(download.New(cfg.RequestTimeout).Read, detector, events, cfg.MaxTexture),
		events: events,
		rnd:    render.New(render.Options{ModelPath: cfg.ModelPath, Placeholder: def}, log),
		reg:    commands.NewRegistry(),
	}
	a.registerCommands()
	a.hud = hud.New(log, a.reg)
	a.hud.ShowFPS = cfg.ShowFPS
	a.hud.Hint = hint
	a.hud.OnFile = a.Open
	return a
}

// Open starts an upload for path. Results of any previous upload are discarded.
func (a *App) Open(path string) {
	a.lastPath = path
	id := a.pipe.Start(path)
	a.scene.Expect(id)
	a.hud.Hint = ""
	a.log.Info("upload started", "upload", id, "file", path)
}

// Resize is called by the window loop when the surface size changes.
func (a *App) Resize(width, height int) {
	if a.view.Resize(width, height) {
		a.log.Info("viewport resized", "width", width, "height", height)
	}
}

// Update runs input and applies pipeline events that arrived since the last frame.
func (a *App) Update() {
	a.hud.Update()
	for {
		select {
		case ev := <-a.events:
			a.handle(ev)
		default:
			return
		}
	}
}

func (a *App) handle(ev pipeline.Event) {
	changed := a.scene.Apply(ev)
	switch ev.Kind {
	case pipeline.BackgroundReady:
		if changed {
			a.log.Info("photo loaded", "upload", ev.Upload, "file", ev.Photo.Name,
				"width", ev.Photo.Size.W, "height", ev.Photo.Size.H)
		}
	case pipeline.Completed:
		if ev.Upload == a.scene.Upload() {
			a.log.Info("slots placed", "upload", ev.Upload, "slots", ev.Count)
		}
	case pipeline.Failed:
		if ev.Upload == "" || ev.Upload != a.scene.Expected() {
			return
		}
		var se *pipeline.StageError
		if errors.As(ev.Err, &se) {
			a.log.Error("upload failed", se.Err, "upload", se.Upload, "stage", se.Stage.String())
		} else {
			a.log.Error("upload failed", ev.Err, "upload", ev.Upload)
		}
	}
}

// Draw renders the scene and the HUD.
func (a *App) Draw() {
	a.rnd.Draw(a.view, a.scene)
	a.hud.Draw()
}

// ReleaseGPU frees textures and models. Must run while the window still exists.
func (a *App) ReleaseGPU() {
	a.rnd.Close()
}

// Close cancels the upload in flight and waits for its goroutine to exit.
func (a *App) Close() {
	a.pipe.Stop()
}

func (a *App) registerCommands() {
	openFS := flag.NewFlagSet("open", flag.ContinueOnError)
	openPath := openFS.String("path", "", "image file or http(s) URL to open")
	a.reg.Register("open", "open -path <image|url>", openFS, func() error {
		p := *openPath
		if p == "" && openFS.NArg() > 0 {
			p = openFS.Arg(0)
		}
		*openPath = ""
		if p == "" {
			return errors.New("open: missing -path")
		}
		a.Open(p)
		return nil
	})
	a.reg.Register("reload", "run the last photo through detection again", nil, func() error {
		if a.lastPath == "" {
			return errors.New("reload: no photo opened yet")
		}
		a.Open(a.lastPath)
		return nil
	})
	a.reg.Register("clear", "remove the photo and all overlays", nil, func() error {
		a.pipe.Cancel()
		a.scene.Clear()
		a.hud.Hint = hint
		return nil
	})
	fpsFS := flag.NewFlagSet("fps", flag.ContinueOnError)
	fpsOn := fpsFS.Bool("on", true, "show the FPS counter")
	a.reg.Register("fps", "fps [-on=true|false]", fpsFS, func() error {
		a.hud.ShowFPS = *fpsOn
		*fpsOn = true
		return nil
	})
	a.reg.Register("help", "list commands", nil, func() error {
		for _, line := range a.reg.Help() {
			a.log.Log(line)
		}
		return nil
	})
}
