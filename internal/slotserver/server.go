// Package slotserver is a development stand-in for the slot detection service. It accepts the same
// request as the real endpoint and answers with fixed placeholder slots derived from the image size.
package slotserver

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/cors"

	"slot-viewer/internal/detect"
	"slot-viewer/internal/logger"
	"slot-viewer/internal/photo"
	"slot-viewer/internal/slots"
)

// maxUpload is the largest multipart body accepted.
const maxUpload = 50 << 20

// Handler serves POST /api/detect_slots and GET /health.
type Handler struct {
	log *logger.Logger
}

// New returns the stub routes wrapped in an allow-all CORS handler, so a browser front end on another
// origin can call it too.
func New(log *logger.Logger) http.Handler {
	h := &Handler{log: log}
	mux := http.NewServeMux()
	mux.HandleFunc(detect.Path, h.DetectSlots)
	mux.HandleFunc("/health", h.Health)
	return cors.AllowAll().Handler(mux)
}

// DetectSlots reads the uploaded image and returns Placeholders for its size.
func (h *Handler) DetectSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		respondError(w, "failed to parse form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile(detect.FileField)
	if err != nil {
		respondError(w, "no file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	size, err := photo.Size(data)
	if err != nil {
		h.log.Error("decode upload", err, "file", header.Filename)
		respondError(w, "could not decode image", http.StatusBadRequest)
		return
	}
	out := slots.Response{Slots: Placeholders(size)}
	h.log.Info("detect_slots", "file", header.Filename, "width", size.W, "height", size.H, "slots", len(out.Slots))
	respondJSON(w, out, http.StatusOK)
}

// Health reports that the stub is up.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// Placeholders returns two slots in the top half of the image: one at 10% from the left, one at 60%,
// both 10% from the top and 30% of the image in each dimension. Coordinates are truncated to whole pixels.
func Placeholders(size slots.ImageSize) []slots.Slot {
	w, h := float64(size.W), float64(size.H)
	trunc := func(v float64) float64 { return float64(int(v)) }
	return []slots.Slot{
		{X: trunc(w * 0.1), Y: trunc(h * 0.1), W: trunc(w * 0.3), H: trunc(h * 0.3)},
		{X: trunc(w * 0.6), Y: trunc(h * 0.1), W: trunc(w * 0.3), H: trunc(h * 0.3)},
	}
}

func respondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, map[string]string{"error": message}, status)
}
