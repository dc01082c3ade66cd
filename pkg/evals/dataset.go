// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package evals

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/teradata-labs/promptbench/internal/log"
	"github.com/teradata-labs/promptbench/pkg/types"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// datasetSchema validates dataset files before they enter the library.
const datasetSchema = `{
	"type": "object",
	"required": ["id", "name", "test_cases"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"name": {"type": "string", "minLength": 1},
		"description": {"type": "string"},
		"test_cases": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["inputs"],
				"properties": {
					"inputs": {
						"type": "object",
						"additionalProperties": {"type": "string"}
					},
					"expected_output": {"type": "string"},
					"criteria": {"type": "string"}
				}
			}
		}
	}
}`

// reloadDebounce coalesces rapid-fire file events from editors that
// write in multiple syscalls.
const reloadDebounce = 500 * time.Millisecond

var compiledSchema = func() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(datasetSchema))
	if err != nil {
		panic(fmt.Sprintf("dataset schema is invalid: %v", err))
	}
	return s
}()

// LoadDataset parses and validates a single YAML dataset file.
func LoadDataset(path string) (*types.EvalDataset, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}

	// Unmarshal to a generic document first so the schema sees the raw
	// shape, then to the typed struct.
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}

	result, err := compiledSchema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("schema validation failed for %s: %w", path, err)
	}
	if !result.Valid() {
		msgs := make([]string, len(result.Errors()))
		for i, verr := range result.Errors() {
			msgs[i] = verr.String()
		}
		return nil, fmt.Errorf("invalid dataset %s: %v", path, msgs)
	}

	var ds types.EvalDataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}
	return &ds, nil
}

// Library holds eval datasets loaded from a directory of YAML files.
type Library struct {
	dir string

	mu       sync.RWMutex
	datasets map[string]*types.EvalDataset

	watcher *fsnotify.Watcher

	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewLibrary loads all datasets from dir.
func NewLibrary(dir string) (*Library, error) {
	lib := &Library{
		dir:            dir,
		datasets:       make(map[string]*types.EvalDataset),
		debounceTimers: make(map[string]*time.Timer),
		stopCh:         make(chan struct{}),
	}
	if err := lib.reloadAll(); err != nil {
		return nil, err
	}
	return lib, nil
}

func isDatasetFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func (l *Library) reloadAll() error {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return fmt.Errorf("failed to read dataset directory %s: %w", l.dir, err)
	}

	loaded := make(map[string]*types.EvalDataset)
	for _, entry := range entries {
		if entry.IsDir() || !isDatasetFile(entry.Name()) {
			continue
		}
		path := filepath.Join(l.dir, entry.Name())
		ds, err := LoadDataset(path)
		if err != nil {
			// Skip invalid files so one bad dataset doesn't block the rest.
			log.Warn("skipping invalid dataset", zap.String("path", path), zap.Error(err))
			continue
		}
		loaded[ds.ID] = ds
	}

	l.mu.Lock()
	l.datasets = loaded
	l.mu.Unlock()
	return nil
}

// Get returns the dataset with the given ID.
func (l *Library) Get(id string) (*types.EvalDataset, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ds, ok := l.datasets[id]
	return ds, ok
}

// List returns all datasets sorted by ID.
func (l *Library) List() []*types.EvalDataset {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*types.EvalDataset, 0, len(l.datasets))
	for _, ds := range l.datasets {
		out = append(out, ds)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Watch starts reloading the library when dataset files change. Call
// Close to stop watching.
func (l *Library) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(l.dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", l.dir, err)
	}
	l.watcher = watcher

	go l.watchLoop()
	log.Info("watching dataset directory", zap.String("dir", l.dir))
	return nil
}

func (l *Library) watchLoop() {
	for {
		select {
		case <-l.stopCh:
			return
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if !isDatasetFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			l.scheduleReload(event.Name)
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("dataset watcher error", zap.Error(err))
		}
	}
}

func (l *Library) scheduleReload(path string) {
	l.debounceMu.Lock()
	defer l.debounceMu.Unlock()

	if timer, ok := l.debounceTimers[path]; ok {
		timer.Stop()
	}
	l.debounceTimers[path] = time.AfterFunc(reloadDebounce, func() {
		if err := l.reloadAll(); err != nil {
			log.Warn("dataset reload failed", zap.Error(err))
			return
		}
		log.Debug("datasets reloaded", zap.String("trigger", path))
	})
}

// Close stops the watcher, if started.
func (l *Library) Close() error {
	var err error
	l.stopOnce.Do(func() {
		close(l.stopCh)
		if l.watcher != nil {
			err = l.watcher.Close()
		}
	})
	return err
}
