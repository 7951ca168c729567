package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const checkpointFilename = "crawl-checkpoint.json"

// CrawlCheckpoint records crawl progress: the listing page to resume from and
// the post URLs whose documents have already been written. A URL is only added
// after its document is durably on disk, so a restart never redoes or loses
// completed work beyond the unit in flight.
type CrawlCheckpoint struct {
	CurrentPage   string    `json:"current_page,omitempty"`
	ProcessedURLs []string  `json:"processed_urls"`
	UpdatedAt     time.Time `json:"timestamp"`

	index map[string]struct{}
}

// NewCheckpoint returns an empty checkpoint for a first run.
func NewCheckpoint() *CrawlCheckpoint {
	return &CrawlCheckpoint{ProcessedURLs: []string{}}
}

// Processed reports whether postURL has already been fully written.
func (c *CrawlCheckpoint) Processed(postURL string) bool {
	c.ensureIndex()
	_, ok := c.index[postURL]
	return ok
}

// MarkProcessed records postURL as fully written.
func (c *CrawlCheckpoint) MarkProcessed(postURL string) {
	c.ensureIndex()
	if _, ok := c.index[postURL]; ok {
		return
	}
	c.index[postURL] = struct{}{}
	c.ProcessedURLs = append(c.ProcessedURLs, postURL)
	c.UpdatedAt = time.Now()
}

// AdvancePage moves the resume point to pageURL.
func (c *CrawlCheckpoint) AdvancePage(pageURL string) {
	c.CurrentPage = pageURL
	c.UpdatedAt = time.Now()
}

func (c *CrawlCheckpoint) ensureIndex() {
	if c.index != nil {
		return
	}
	c.index = make(map[string]struct{}, len(c.ProcessedURLs))
	for _, u := range c.ProcessedURLs {
		c.index[u] = struct{}{}
	}
}

// CheckpointStore loads and persists crawl checkpoints.
type CheckpointStore interface {
	Load() (*CrawlCheckpoint, error)
	Save(*CrawlCheckpoint) error
}

// FileCheckpointStore keeps the checkpoint as a JSON file in the output
// directory. Saves go through a temp file and an atomic rename so a crash
// mid-write cannot corrupt the previous checkpoint.
type FileCheckpointStore struct {
	path string
}

// NewFileCheckpointStore creates a store writing under dir.
func NewFileCheckpointStore(dir string) *FileCheckpointStore {
	return &FileCheckpointStore{path: filepath.Join(dir, checkpointFilename)}
}

// Load reads the checkpoint from disk. A missing file yields an empty
// checkpoint, not an error.
func (s *FileCheckpointStore) Load() (*CrawlCheckpoint, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return NewCheckpoint(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading checkpoint: %w", err)
	}

	checkpoint := &CrawlCheckpoint{}
	if err := json.Unmarshal(data, checkpoint); err != nil {
		return nil, fmt.Errorf("decoding checkpoint: %w", err)
	}
	if checkpoint.ProcessedURLs == nil {
		checkpoint.ProcessedURLs = []string{}
	}
	return checkpoint, nil
}

// Save persists the checkpoint atomically.
func (s *FileCheckpointStore) Save(checkpoint *CrawlCheckpoint) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating checkpoint directory: %w", err)
	}

	data, err := json.MarshalIndent(checkpoint, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding checkpoint: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("writing checkpoint: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		return fmt.Errorf("saving checkpoint: %w", err)
	}
	return nil
}
