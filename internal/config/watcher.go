package config

import (
	"context"
	"log"
	"time"

	"github.com/fsnotify/fsnotify"
)

// StartWatcher monitors the config file and reloads the store on change.
// Falls back to polling when fsnotify cannot attach.
func (s *Store) StartWatcher(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	usePolling := false

	if err != nil {
		log.Printf("Config Watcher: fsnotify failed (%v), falling back to polling", err)
		usePolling = true
	} else {
		if err := watcher.Add(s.path); err != nil {
			log.Printf("Config Watcher: failed to watch %s (%v), falling back to polling", s.path, err)
			usePolling = true
			watcher.Close()
		}
	}

	if !usePolling {
		go func() {
			defer watcher.Close()
			for {
				select {
				case <-ctx.Done():
					return
				case event, ok := <-watcher.Events:
					if !ok {
						return
					}
					if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
						// Editors often write in two ops; settle first.
						time.Sleep(100 * time.Millisecond)
						if err := s.Reload(); err != nil {
							log.Printf("Config Watcher: reload failed, keeping previous config: %v", err)
						} else {
							log.Println("Config Watcher: configuration reloaded")
						}
					}
				case err, ok := <-watcher.Errors:
					if !ok {
						return
					}
					log.Printf("Config Watcher Error: %v", err)
				}
			}
		}()
		return
	}

	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Reload(); err != nil {
					log.Printf("Config Watcher: poll reload failed: %v", err)
				}
			}
		}
	}()
}
