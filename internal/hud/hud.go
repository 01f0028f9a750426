package hud

import (
	"fmt"
	"strings"
	"unicode/utf8"

	rl "github.com/gen2brain/raylib-go/raylib"

	"slot-viewer/internal/commands"
	"slot-viewer/internal/logger"
)

const (
	BarHeight = 40
	prompt    = "> "
	fontSize  = 20
	padding   = 8
	// Log lines drawn above the input bar when it is open, and at the top-left when it is closed.
	maxLinesOpen   = 14
	maxLinesClosed = 4
	lineHeight     = fontSize + 4
	maxLineChars   = 200
	// fpsInterval: the FPS text is rebuilt every N frames.
	fpsInterval = 30
)

var (
	barColor    = rl.NewColor(40, 40, 40, 255)
	lineColor   = rl.NewColor(80, 80, 80, 255)
	chatBgColor = rl.NewColor(24, 24, 24, 240)
	statusColor = rl.NewColor(230, 230, 230, 255)
)

// HUD is the 2D layer over the scene: recent log lines, an input bar toggled with ESC, an optional
// FPS readout, and the file input. A file dropped on the window, or a path typed in the bar, is passed
// to OnFile. Lines starting with "cmd " run through the command registry instead.
type HUD struct {
	log      *logger.Logger
	reg      *commands.Registry
	inputBuf string
	open     bool

	ShowFPS    bool
	frameCount uint32
	fpsText    string

	// Hint is drawn centered while there is nothing else on screen.
	Hint string
	// OnFile is called on the main thread with the path of a dropped or typed file.
	OnFile func(path string)
}

// New returns a HUD that logs to log and runs "cmd ..." lines through reg. The input bar starts closed.
func New(log *logger.Logger, reg *commands.Registry) *HUD {
	return &HUD{log: log, reg: reg}
}

// IsOpen reports whether the input bar is visible and capturing keys.
func (h *HUD) IsOpen() bool {
	return h.open
}

// Update handles dropped files, ESC, and typing. Call once per frame.
func (h *HUD) Update() {
	if rl.IsFileDropped() {
		files := rl.LoadDroppedFiles()
		rl.UnloadDroppedFiles()
		// One photo per drop, like a single-file input.
		if len(files) > 0 {
			if len(files) > 1 {
				h.log.Info("several files dropped, opening the first", "count", len(files))
			}
			h.openFile(files[0])
		}
	}

	if rl.IsKeyPressed(rl.KeyEscape) {
		h.open = !h.open
	}
	if !h.open {
		return
	}
	// Paste: Ctrl+V (Windows/Linux) or Cmd+V (macOS)
	if rl.IsKeyPressed(rl.KeyV) && (rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl) || rl.IsKeyDown(rl.KeyLeftSuper) || rl.IsKeyDown(rl.KeyRightSuper)) {
		if pasted := rl.GetClipboardText(); pasted != "" {
			h.inputBuf += strings.TrimSpace(pasted)
		}
	} else {
		for {
			c := rl.GetCharPressed()
			if c == 0 {
				break
			}
			h.inputBuf += string(rune(c))
		}
	}
	if rl.IsKeyPressed(rl.KeyBackspace) && len(h.inputBuf) > 0 {
		_, size := utf8.DecodeLastRuneInString(h.inputBuf)
		h.inputBuf = h.inputBuf[:len(h.inputBuf)-size]
	}
	if (rl.IsKeyPressed(rl.KeyEnter) || rl.IsKeyPressed(rl.KeyKpEnter)) && h.inputBuf != "" {
		line := strings.TrimSpace(h.inputBuf)
		h.inputBuf = ""
		h.submit(line)
	}
}

func (h *HUD) submit(line string) {
	if line == "" {
		return
	}
	h.log.Log(prompt + line)
	args, isCmd, err := commands.Parse(line)
	if err != nil {
		h.log.Error("parse command", err)
		return
	}
	if isCmd {
		if err := h.reg.Execute(args); err != nil {
			h.log.Error("command failed", err)
		}
		return
	}
	h.openFile(strings.Trim(line, `"'`))
}

func (h *HUD) openFile(path string) {
	if h.OnFile == nil {
		return
	}
	h.OnFile(path)
}

// Draw draws the log lines, the input bar when open, the hint, and the FPS readout.
func (h *HUD) Draw() {
	screenW := int32(rl.GetScreenWidth())
	screenH := int32(rl.GetScreenHeight())
	lines := h.log.Lines()

	if h.Hint != "" && !h.open {
		w := rl.MeasureText(h.Hint, fontSize)
		rl.DrawText(h.Hint, (screenW-w)/2, screenH/2-fontSize/2, fontSize, statusColor)
	}

	if !h.open {
		start := max(0, len(lines)-maxLinesClosed)
		for i := start; i < len(lines); i++ {
			y := int32(padding + (i-start)*lineHeight)
			rl.DrawText(clip(lines[i]), padding, y, fontSize, statusColor)
		}
	} else {
		barY := screenH - BarHeight
		chatHeight := int32(maxLinesOpen * lineHeight)
		chatY := barY - chatHeight
		if chatY < 0 {
			chatHeight = barY
			chatY = 0
		}
		if chatHeight > 0 {
			rl.DrawRectangle(0, chatY, screenW, chatHeight, chatBgColor)
		}
		start := max(0, len(lines)-maxLinesOpen)
		for i := start; i < len(lines); i++ {
			y := chatY + int32((i-start)*lineHeight+padding)
			rl.DrawText(clip(lines[i]), padding, y, fontSize, rl.LightGray)
		}
		rl.DrawRectangle(0, barY, screenW, BarHeight, barColor)
		rl.DrawRectangle(0, barY, screenW, 1, lineColor)
		rl.DrawText(prompt+h.inputBuf+"|", padding, barY+padding, fontSize, rl.White)
	}

	h.drawFPS(screenW)
}

// drawFPS draws the FPS counter at the top-right in green. The text is only rebuilt every fpsInterval frames.
func (h *HUD) drawFPS(screenW int32) {
	if !h.ShowFPS {
		return
	}
	h.frameCount++
	if h.fpsText == "" || h.frameCount%fpsInterval == 0 {
		h.fpsText = fmt.Sprintf("FPS: %d", rl.GetFPS())
	}
	w := rl.MeasureText(h.fpsText, fontSize)
	rl.DrawText(h.fpsText, screenW-w-padding*2, padding, fontSize, rl.Green)
}

// clip shortens line to at most maxLineChars bytes, cutting on a rune boundary.
func clip(line string) string {
	if len(line) <= maxLineChars {
		return line
	}
	cut := maxLineChars - 3
	for cut > 0 && !utf8.RuneStart(line[cut]) {
		cut--
	}
	return line[:cut] + "..."
}
