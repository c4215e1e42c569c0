package index

import (
	"crypto/sha256"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lexcodex/bracepy/annotate"
	"github.com/lexcodex/bracepy/pytree"
)

// Config configures the Manager.
type Config struct {
	WorkspacePath   string
	ParallelWorkers int
	IgnorePatterns  []string
	Logger          *log.Logger
}

// Manager walks a workspace, extracts block structures from every Python
// file, and persists them through a Store.
type Manager struct {
	store    Store
	parser   pytree.Parser
	detector *pytree.LanguageDetector
	opts     annotate.Options
	config   Config
	mu       sync.Mutex
	indexing map[string]bool
}

// NewManager builds a manager with the default Python parser.
func NewManager(store Store, opts annotate.Options, config Config) *Manager {
	return &Manager{
		store:    store,
		parser:   pytree.NewPythonParser(),
		detector: pytree.NewLanguageDetector(),
		opts:     opts,
		config:   config,
		indexing: make(map[string]bool),
	}
}

// IndexFile parses one file and stores its structures. Unchanged files
// (matching content hash) are skipped.
func (m *Manager) IndexFile(path string) error {
	m.mu.Lock()
	if m.indexing[path] {
		m.mu.Unlock()
		return fmt.Errorf("index already running for %s", path)
	}
	m.indexing[path] = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		delete(m.indexing, path)
		m.mu.Unlock()
	}()

	if !m.detector.IsPython(path) {
		return fmt.Errorf("not a python file: %s", path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	contentHash := hashContent(string(content))

	if existing, err := m.store.GetFileByPath(path); err == nil && existing != nil {
		if existing.ContentHash == contentHash {
			return nil
		}
		if err := m.store.DeleteFile(existing.ID); err != nil {
			return fmt.Errorf("delete previous index: %w", err)
		}
	}

	tree, err := m.parser.Parse(string(content), path)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	structures := annotate.ResolveChains(annotate.Extract(tree, m.opts))

	fileID := generateFileID(path)
	record := &FileRecord{
		ID:             fileID,
		Path:           path,
		RelativePath:   m.relativePath(path),
		Language:       tree.Language,
		LineCount:      tree.LineCount,
		StructureCount: len(structures),
		ContentHash:    contentHash,
		AnnotatedAt:    time.Now().UTC(),
	}
	if err := m.store.SaveFile(record); err != nil {
		return err
	}
	rows := make([]*StructureRecord, 0, len(structures))
	for i, s := range structures {
		rows = append(rows, &StructureRecord{
			ID:           fmt.Sprintf("%s:%d:%d", fileID, s.StartLine, i),
			FileID:       fileID,
			Kind:         s.Kind.String(),
			Subkind:      s.Subkind.String(),
			Name:         s.Name,
			StartLine:    s.StartLine,
			StartColumn:  s.StartColumn,
			EndLine:      s.EndLine,
			ChainEndLine: s.ChainEndLine,
		})
	}
	return m.store.SaveStructures(rows)
}

// IndexWorkspace walks the workspace and indexes every Python file.
// Per-file failures are logged and do not abort the walk.
func (m *Manager) IndexWorkspace() error {
	root := m.config.WorkspacePath
	if root == "" {
		root = "."
	}
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if m.shouldIgnore(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if m.shouldIgnore(path) || !m.detector.IsPython(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return err
	}
	if m.config.ParallelWorkers > 1 {
		return m.indexFilesParallel(files)
	}
	for _, file := range files {
		if err := m.IndexFile(file); err != nil {
			m.logf("index warning: %v", err)
		}
	}
	return nil
}

func (m *Manager) indexFilesParallel(files []string) error {
	workerCount := m.config.ParallelWorkers
	var wg sync.WaitGroup
	fileCh := make(chan string)
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range fileCh {
				if err := m.IndexFile(file); err != nil {
					m.logf("index warning: %s: %v", file, err)
				}
			}
		}()
	}
	for _, file := range files {
		fileCh <- file
	}
	close(fileCh)
	wg.Wait()
	return nil
}

func (m *Manager) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if base != "." && strings.HasPrefix(base, ".") {
		return true
	}
	for _, pattern := range m.config.IgnorePatterns {
		if match, err := filepath.Match(pattern, base); err == nil && match {
			return true
		}
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

func (m *Manager) relativePath(path string) string {
	if m.config.WorkspacePath == "" {
		return filepath.Base(path)
	}
	rel, err := filepath.Rel(m.config.WorkspacePath, path)
	if err != nil {
		return filepath.Base(path)
	}
	return rel
}

func (m *Manager) logf(format string, args ...interface{}) {
	if m.config.Logger != nil {
		m.config.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// StructuresForFile fetches the persisted structures for a path.
func (m *Manager) StructuresForFile(path string) ([]*StructureRecord, error) {
	record, err := m.store.GetFileByPath(path)
	if err != nil {
		return nil, err
	}
	return m.store.StructuresByFile(record.ID)
}

// Search routes to the underlying store.
func (m *Manager) Search(query StructureQuery) ([]*StructureRecord, error) {
	return m.store.SearchStructures(query)
}

// Stats proxies store.GetStats for callers.
func (m *Manager) Stats() (*Stats, error) {
	return m.store.GetStats()
}

func generateFileID(path string) string {
	sum := sha256.Sum256([]byte(path))
	return fmt.Sprintf("file:%x", sum[:8])
}

func hashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", sum[:])
}
