package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"voicenav/internal/application"
)

const processedSuffix = ".processed"

var audioExts = []string{".wav", ".mp3", ".m4a", ".webm"}

// DirSource watches a directory for utterances. A .txt file holds one
// utterance as text; audio files are passed on for transcription. Consumed
// files are renamed with a .processed suffix. Writers should create files
// elsewhere and rename them in, so a file is never read half-written.
type DirSource struct {
	dir    string
	logger *slog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	queue   []string
	queued  map[string]bool
	ready   chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
}

func NewDirSource(dir string, logger *slog.Logger) *DirSource {
	return &DirSource{
		dir:    dir,
		logger: logger,
		queued: make(map[string]bool),
		ready:  make(chan struct{}, 1),
	}
}

func (d *DirSource) Name() string {
	return "dir"
}

func (d *DirSource) Start(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.watcher != nil {
		return nil
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return fmt.Errorf("creating utterance dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(d.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", d.dir, err)
	}

	entries, err := os.ReadDir(d.dir)
	if err != nil {
		watcher.Close()
		return fmt.Errorf("reading dir: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			d.pushLocked(filepath.Join(d.dir, entry.Name()))
		}
	}

	d.watcher = watcher
	d.done = make(chan struct{})
	d.wg.Add(1)
	go d.watch(watcher, d.done)

	d.logger.Info("watching utterance dir", "dir", d.dir, "pending", len(d.queue))
	return nil
}

func (d *DirSource) Stop() error {
	d.mu.Lock()
	watcher := d.watcher
	done := d.done
	d.watcher = nil
	d.mu.Unlock()

	if watcher == nil {
		return nil
	}

	close(done)
	err := watcher.Close()
	d.wg.Wait()
	if err != nil {
		return fmt.Errorf("closing watcher: %w", err)
	}
	return nil
}

func (d *DirSource) watch(watcher *fsnotify.Watcher, done <-chan struct{}) {
	defer d.wg.Done()

	for {
		select {
		case <-done:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			d.mu.Lock()
			d.pushLocked(event.Name)
			d.mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			d.logger.Warn("watcher error", "dir", d.dir, "error", err)
		}
	}
}

func (d *DirSource) pushLocked(path string) {
	if !eligible(path) || d.queued[path] {
		return
	}
	d.queued[path] = true
	d.queue = append(d.queue, path)

	select {
	case d.ready <- struct{}{}:
	default:
	}
}

func eligible(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".txt" || slices.Contains(audioExts, ext)
}

func (d *DirSource) Next(ctx context.Context) ([]byte, error) {
	for {
		if path, ok := d.pop(); ok {
			payload, err := d.consume(path)
			if err != nil {
				return nil, err
			}
			if payload != nil {
				return payload, nil
			}
			continue
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-d.ready:
		}
	}
}

func (d *DirSource) pop() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.queue) == 0 {
		return "", false
	}
	path := d.queue[0]
	d.queue = d.queue[1:]
	delete(d.queued, path)
	return path, true
}

// consume reads and retires one file. A nil payload means the file had
// nothing to say and should be skipped.
func (d *DirSource) consume(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	if err := os.Rename(path, path+processedSuffix); err != nil {
		d.logger.Warn("marking file processed", "path", path, "error", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".txt") {
		text := strings.TrimSpace(string(data))
		if text == "" {
			return nil, nil
		}
		return application.TextPayload(text), nil
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}
