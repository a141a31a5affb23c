package config

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Watcher reloads a config file when it changes on disk. Editors that save
// by rename are handled by watching the parent directory.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	Configs chan *Config
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{
		path:    abs,
		watcher: fw,
		Configs: make(chan *Config, 1),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer func() {
		close(w.Configs)
		close(w.Errors)
		close(w.done)
	}()

	timer := time.NewTimer(reloadDebounce)
	timer.Stop()

	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			// trailing edge: reload once the writes settle
			timer.Reset(reloadDebounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.sendErr(err)
		case <-timer.C:
			cfg, err := Load(w.path)
			if err != nil {
				slog.Warn("Config reload failed", "path", w.path, "error", err)
				w.sendErr(err)
				continue
			}
			slog.Info("Config reloaded", "path", w.path)
			w.sendConfig(cfg)
		case <-w.closeCh:
			timer.Stop()
			return
		}
	}
}

// sendConfig keeps only the newest config when the consumer lags.
func (w *Watcher) sendConfig(cfg *Config) {
	select {
	case <-w.Configs:
	default:
	}
	select {
	case w.Configs <- cfg:
	default:
	}
}

func (w *Watcher) sendErr(err error) {
	select {
	case w.Errors <- err:
	default:
	}
}
