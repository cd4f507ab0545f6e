package docmerge

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
)

// StageConverting is the stage reported while chunks are converted.
const StageConverting = "converting"

// Progress stream ordering errors.
var (
	ErrMetaNotSent  = errors.New("progress reported before meta")
	ErrMetaRepeated = errors.New("meta already reported")
)

type metaEvent struct {
	Type  string `json:"type"`
	Total int    `json:"total"`
}

type progressEvent struct {
	Type      string `json:"type"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	Percent   int    `json:"percent"`
	Stage     string `json:"stage"`
}

// Percent returns floor(processed*100/total), or 0 when total is 0.
func Percent(processed, total int) int {
	if total <= 0 {
		return 0
	}
	return processed * 100 / total
}

// Reporter writes the progress stream: one JSON value per line.
// It is safe for concurrent use; lines never interleave.
type Reporter struct {
	mu       sync.Mutex
	enc      *json.Encoder
	logger   *slog.Logger
	metaSent bool
}

// NewReporter writes events to w and mirrors progress to logger.
// A nil logger disables the mirror.
func NewReporter(w io.Writer, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Reporter{enc: enc, logger: logger}
}

// Meta announces the number of records. It must be the first event.
func (r *Reporter) Meta(total int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.metaSent {
		return ErrMetaRepeated
	}
	r.metaSent = true
	return r.enc.Encode(metaEvent{Type: "meta", Total: total})
}

// Progress reports processed of total records done in stage.
func (r *Reporter) Progress(processed, total int, stage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.metaSent {
		return ErrMetaNotSent
	}
	pct := Percent(processed, total)
	r.logger.Info("progress", "processed", processed, "total", total, "percent", pct, "stage", stage)
	return r.enc.Encode(progressEvent{
		Type:      "progress",
		Processed: processed,
		Total:     total,
		Percent:   pct,
		Stage:     stage,
	})
}

// Result writes the final line. It may be written without a prior Meta,
// e.g. when input validation fails.
func (r *Reporter) Result(res Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.enc.Encode(res)
}
