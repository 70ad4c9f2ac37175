package scanner

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/Cupcake005/sku-app/internal/domain"
	"github.com/Cupcake005/sku-app/internal/logging"
)

// LineDecoder turns a newline-terminated stream of codes into a
// domain.BarcodeDecoder. Keyboard-wedge and serial scanners emit exactly
// that; so does stdin. A code identical to the previous one is dropped
// while it repeats within the dedupe window.
type LineDecoder struct {
	source io.Reader
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	started bool
}

// NewLineDecoder creates a decoder over source. A zero window disables
// duplicate suppression.
func NewLineDecoder(source io.Reader, window time.Duration) *LineDecoder {
	return &LineDecoder{
		source: source,
		window: window,
		now:    time.Now,
	}
}

// Codes starts reading. It can be called once; the channel is closed when
// the source is exhausted or ctx is done.
func (d *LineDecoder) Codes(ctx context.Context) (<-chan string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.source == nil || d.started {
		return nil, domain.ErrDecoderUnavailable
	}
	d.started = true

	out := make(chan string)
	go d.run(ctx, out)
	return out, nil
}

func (d *LineDecoder) run(ctx context.Context, out chan<- string) {
	defer close(out)

	var (
		last   string
		lastAt time.Time
	)

	lines := bufio.NewScanner(d.source)
	for lines.Scan() {
		code := strings.TrimSpace(lines.Text())
		if code == "" {
			continue
		}

		now := d.now()
		if d.window > 0 && code == last && now.Sub(lastAt) < d.window {
			lastAt = now
			continue
		}
		last, lastAt = code, now

		select {
		case out <- code:
		case <-ctx.Done():
			return
		}
	}

	if err := lines.Err(); err != nil {
		logging.FromContext(ctx).Warn("barcode source stopped", "error", err)
	}
}
