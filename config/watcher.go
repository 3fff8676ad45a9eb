package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"lautenbacher.net/gohaptics/util"
)

// Watcher observes the config file and publishes the runtime-changeable
// subset into an AtomicEvent whenever the file is rewritten. Consumers
// read the cell's latest value; intermediate rewrites coalesce.
type Watcher struct {
	cfile    string
	fsw      *fsnotify.Watcher
	updates  *util.AtomicEvent[RuntimeConfig]
	stopChan chan struct{}
}

// NewWatcher creates a watcher for the given config file. The initial
// runtime config is published immediately so consumers never see an empty
// cell.
func NewWatcher(conf *Config) *Watcher {
	w := &Watcher{
		cfile:    conf.Configfile,
		updates:  util.NewAtomicEvent[RuntimeConfig](),
		stopChan: make(chan struct{}),
	}
	w.updates.Send(conf.Runtime())
	return w
}

// Updates returns the cell carrying the latest runtime configuration.
func (w *Watcher) Updates() *util.AtomicEvent[RuntimeConfig] {
	return w.updates
}

// Start begins watching the config file's directory. Watching the
// directory instead of the file keeps the watch alive across the
// rename-and-replace dance editors and SaveConfig perform.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("can't create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.cfile)); err != nil {
		fsw.Close()
		return fmt.Errorf("can't watch config dir: %w", err)
	}
	w.fsw = fsw

	go w.run()
	return nil
}

func (w *Watcher) run() {
	var reload <-chan time.Time
	for {
		select {
		case <-w.stopChan:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.cfile) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			// Debounce: editors produce bursts of events per save.
			reload = time.After(200 * time.Millisecond)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Error("Config watcher error", "error", err)
		case <-reload:
			reload = nil
			conf, err := ReadConfig(w.cfile, false)
			if err != nil {
				slog.Error("Ignoring config reload", "error", err)
				continue
			}
			slog.Info("Runtime config reloaded", "file", w.cfile)
			w.updates.Send(conf.Runtime())
		}
	}
}

// Stop ends the watch. Safe to call only once.
func (w *Watcher) Stop() {
	close(w.stopChan)
	if w.fsw != nil {
		w.fsw.Close()
	}
}
