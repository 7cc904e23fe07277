package config

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tafyai/agentsh-security-core/internal/policy"
	"github.com/tafyai/agentsh-security-core/internal/telemetry"
)

// PolicyWatcher reloads a policy.Manager whenever its backing document
// changes on disk. Trimmed from the daemon's general-purpose recursive
// filesystem watcher down to a single watched file, since the policy
// document's directory (not a project tree) is the only thing in scope
// here.
type PolicyWatcher struct {
	watcher     *fsnotify.Watcher
	manager     *policy.Manager
	path        string
	debounce    time.Duration
	log         *telemetry.Logger
	stopCh      chan struct{}
}

// NewPolicyWatcher wires an fsnotify watcher to reload manager from path
// on every write event, debounced to absorb editors that save via a
// temp-file-then-rename sequence.
func NewPolicyWatcher(path string, manager *policy.Manager, log *telemetry.Logger) (*PolicyWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}

	return &PolicyWatcher{
		watcher:  w,
		manager:  manager,
		path:     path,
		debounce: 200 * time.Millisecond,
		log:      log,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start loads the policy once and begins watching for changes.
// Non-blocking.
func (p *PolicyWatcher) Start() {
	if err := p.manager.LoadFile(p.path); err != nil {
		p.logError(err)
	}
	go p.loop()
}

// Stop halts the watch loop and releases the underlying fsnotify
// watcher.
func (p *PolicyWatcher) Stop() {
	close(p.stopCh)
	p.watcher.Close()
}

func (p *PolicyWatcher) loop() {
	var pending *time.Timer
	for {
		select {
		case <-p.stopCh:
			return
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(p.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(p.debounce, p.reload)
		case _, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (p *PolicyWatcher) reload() {
	if err := p.manager.LoadFile(p.path); err != nil {
		p.logError(err)
		return
	}
	if p.log != nil {
		p.log.Log(telemetry.Info, "config", "policy document reloaded: "+p.path)
	}
}

func (p *PolicyWatcher) logError(err error) {
	if p.log != nil {
		p.log.LogError("config", err)
	}
}
