package file

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/catalyst-match/identity/internal/logger"
)

// Watch reloads the store whenever the config file changes on disk and
// invokes onChange with the fresh snapshot. It returns a stop function.
// Editors often replace files instead of writing in place, so the watch is
// on the directory and filtered to the config file name.
func (s *ConfigStore) Watch(onChange func(Config)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != s.filePath {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := s.Load(); err != nil {
					logger.Warn("Config reload failed: %v", err)
					continue
				}
				logger.Debug("Config reloaded from %s", s.filePath)
				if onChange != nil {
					onChange(s.Config())
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Config watcher error: %v", err)
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}
