package auth

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/muurk/proxycfg/internal/logging"
)

const watchDebounce = 200 * time.Millisecond

// Watcher reports token changes made to the settings file by other
// processes.
type Watcher struct {
	session *Session
	watcher *fsnotify.Watcher
	file    string
	changes chan string
	done    chan struct{}
}

// Watch starts following the session's settings file. The directory is
// watched rather than the file because saves replace the file by rename.
func (s *Session) Watch() (*Watcher, error) {
	path := s.Settings().Path()
	dir := filepath.Dir(path)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{
		session: s,
		watcher: fw,
		file:    filepath.Clean(path),
		changes: make(chan string, 1),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Changes delivers the new token each time it changes on disk. It is closed
// when the watcher stops.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) loop() {
	defer close(w.changes)

	debounce := time.NewTimer(time.Hour)
	if !debounce.Stop() {
		<-debounce.C
	}
	pending := false

	for {
		select {
		case <-w.done:
			return
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("Settings watcher error", zap.Error(err))
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.isRelevantEvent(ev) {
				continue
			}
			pending = true
			debounce.Reset(watchDebounce)
		case <-debounce.C:
			if !pending {
				continue
			}
			pending = false

			token, changed, err := w.session.reload()
			if err != nil {
				logging.Warn("Failed to reload settings", zap.Error(err))
				continue
			}
			if !changed {
				continue
			}
			logging.Info("Token changed on disk", zap.Bool("logged_in", token != ""))
			select {
			case w.changes <- token:
			case <-w.done:
				return
			}
		}
	}
}

func (w *Watcher) isRelevantEvent(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.file {
		return false
	}
	return ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}
