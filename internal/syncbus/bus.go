// Package syncbus fans data-change signals out to subscribers in this
// process and, through a marker file in the data directory, to every
// other running instance sharing that directory. Delivery is
// at-least-once: subscribers must tolerate redundant signals, which
// costs at most a spurious reload.
package syncbus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// MarkerFile is the name of the change marker inside the data directory.
const MarkerFile = "sync.marker"

// debounceWindow collapses bursts of filesystem events into one signal.
const debounceWindow = 120 * time.Millisecond

// Bus is the change-signal hub. A nil marker directory keeps the bus
// purely in-process.
type Bus struct {
	mu     sync.Mutex
	subs   map[int]func()
	nextID int

	markerPath string
	logger     *log.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger routes watcher diagnostics to logger.
func WithLogger(logger *log.Logger) Option {
	return func(b *Bus) { b.logger = logger }
}

// New constructs a bus whose marker lives in dir. Pass an empty dir for
// an in-process-only bus.
func New(dir string, opts ...Option) *Bus {
	b := &Bus{subs: make(map[int]func())}
	if dir != "" {
		b.markerPath = filepath.Join(dir, MarkerFile)
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = log.New(os.Stderr)
	}
	return b
}

// Subscribe registers fn and returns its cancel func. Cancel is
// idempotent.
func (b *Bus) Subscribe(fn func()) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Notify signals every local subscriber and bumps the marker so other
// instances watching the data directory wake up too.
func (b *Bus) Notify(ctx context.Context) {
	b.deliver()
	if b.markerPath == "" {
		return
	}
	if err := b.bumpMarker(); err != nil {
		b.logger.Warn("sync marker bump failed", "err", err)
	}
}

func (b *Bus) deliver() {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (b *Bus) bumpMarker() error {
	n := 0
	if raw, err := os.ReadFile(b.markerPath); err == nil {
		if parsed, perr := strconv.Atoi(strings.TrimSpace(string(raw))); perr == nil {
			n = parsed
		}
	}
	data := []byte(strconv.Itoa(n+1) + "\n")
	if err := os.WriteFile(b.markerPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", MarkerFile, err)
	}
	return nil
}

// Watch blocks until ctx is done, delivering a signal to local
// subscribers whenever another process touches the marker file. Events
// are debounced so a burst of writes wakes subscribers once.
func (b *Bus) Watch(ctx context.Context) error {
	if b.markerPath == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors and atomic writers
	// replace files, which drops a direct file watch.
	if err := watcher.Add(filepath.Dir(b.markerPath)); err != nil {
		return fmt.Errorf("watch data directory: %w", err)
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != MarkerFile {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(debounceWindow, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(debounceWindow)
			}
		case <-fire:
			timer = nil
			b.deliver()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			b.logger.Warn("sync watcher error", "err", err)
		}
	}
}
