package config

import (
	"github.com/fsnotify/fsnotify"

	"MusicRoom/logger"
)

// Watch 监听配置文件变化，变化后重新加载并回调。
// 返回的函数用于停止监听。
func Watch(path string, onReload func(*Config)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(path); err != nil {
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
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				logger.Debug("config file changed", logger.String("path", event.Name))
				onReload(Reload(path))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher error", logger.ErrorField(err))
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
