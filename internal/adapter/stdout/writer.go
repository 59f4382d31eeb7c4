package stdout

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"orion-collector/internal/domain"
)

// Writer emits loop records as JSON lines, one record per line. It is the
// default sink and implements pipeline.Publisher.
type Writer struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewWriter wraps w, normally os.Stdout.
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: json.NewEncoder(w)}
}

// Publish writes one record followed by a newline.
func (w *Writer) Publish(ctx context.Context, rec domain.OutputRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(rec)
}
