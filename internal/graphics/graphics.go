package graphics

import rl "github.com/gen2brain/raylib-go/raylib"

// Options configures the window.
type Options struct {
	Title     string
	Width     int
	Height    int
	TargetFPS int
	// OnInit runs once after the window and GL context exist, before the first frame.
	OnInit func()
	// OnClose runs after the loop ends, before the window closes (release GPU resources here).
	OnClose func()
}

// Run opens a resizable window and runs the main loop until the window is closed.
// Each frame it calls resize when the window size changed, then update, then clears the screen and calls draw.
// ESC is left to the caller (it toggles the input bar); close via the window button.
func Run(opts Options, resize func(width, height int), update, draw func()) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint | rl.FlagVsyncHint)
	rl.InitWindow(int32(opts.Width), int32(opts.Height), opts.Title)
	defer rl.CloseWindow()

	rl.SetExitKey(rl.KeyNull)
	rl.SetTargetFPS(int32(opts.TargetFPS))
	if opts.OnInit != nil {
		opts.OnInit()
	}
	if opts.OnClose != nil {
		defer opts.OnClose()
	}
	resize(rl.GetScreenWidth(), rl.GetScreenHeight())

	for !rl.WindowShouldClose() {
		if rl.IsWindowResized() {
			resize(rl.GetScreenWidth(), rl.GetScreenHeight())
		}
		update()

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		draw()
		rl.EndDrawing()
	}
}
