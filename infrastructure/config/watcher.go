package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lindoshq/lindos-go/infrastructure/logging"
)

// reloadQuiet coalesces the burst of filesystem events an editor save emits.
const reloadQuiet = 100 * time.Millisecond

// Watcher reloads a configuration file when it changes on disk and hands the
// result to a callback. A file that becomes unreadable or invalid keeps the
// last good configuration.
type Watcher struct {
	path     string
	loader   *Loader
	onChange func(*Config)

	fw       *fsnotify.Watcher
	done     chan struct{}
	closed   sync.Once
	loopDone chan struct{}
}

// NewWatcher starts watching path. onChange runs on the watcher goroutine for
// every successful reload.
func NewWatcher(path string, loader *Loader, onChange func(*Config)) (*Watcher, error) {
	if loader == nil {
		loader = NewLoader()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch the directory, not the file: editors replace files by rename,
	// which drops a watch placed on the file itself.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	w := &Watcher{
		path:     path,
		loader:   loader,
		onChange: onChange,
		fw:       fw,
		done:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Close stops watching. Safe to call more than once.
func (w *Watcher) Close() error {
	w.closed.Do(func() {
		close(w.done)
		w.fw.Close()
		<-w.loopDone
	})
	return nil
}

func (w *Watcher) loop() {
	defer close(w.loopDone)

	var pending *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-w.done:
			return
		case <-reload:
			w.reload()
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(reloadQuiet, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			logging.Warn().
				Add(logging.Component("config")).
				Add(logging.ErrorField(err)).
				Msg("config watch error")
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := w.loader.LoadFile(w.path)
	if err != nil {
		logging.Warn().
			Add(logging.Component("config")).
			Add(logging.ErrorField(err)).
			Msg("config reload failed, keeping previous configuration")
		return
	}

	logging.Info().
		Add(logging.Component("config")).
		Msg("configuration reloaded")

	if w.onChange != nil {
		w.onChange(cfg)
	}
}
