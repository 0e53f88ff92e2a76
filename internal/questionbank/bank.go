// Package questionbank serves curated real-interview questions from a YAML
// file. Lookups are static; the file can be hot-reloaded while the service
// runs.
package questionbank

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Question is one curated bank entry.
type Question struct {
	Topic      string   `yaml:"topic" json:"topic"`
	Company    string   `yaml:"company" json:"company"`
	Year       string   `yaml:"year" json:"year"`
	Question   string   `yaml:"question" json:"question"`
	Difficulty string   `yaml:"difficulty" json:"difficulty"`
	Tags       []string `yaml:"tags,omitempty" json:"tags,omitempty"`
}

type bankFile struct {
	Questions []Question `yaml:"questions"`
}

// Bank holds the loaded question set.
type Bank struct {
	path string

	mu        sync.RWMutex
	questions []Question
}

// Load reads the bank from a YAML file.
func Load(path string) (*Bank, error) {
	b := &Bank{path: path}
	if err := b.reload(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bank) reload() error {
	raw, err := os.ReadFile(b.path)
	if err != nil {
		return fmt.Errorf("read question bank: %w", err)
	}
	var f bankFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse question bank: %w", err)
	}
	b.mu.Lock()
	b.questions = f.Questions
	b.mu.Unlock()
	return nil
}

// Len reports how many questions are loaded.
func (b *Bank) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.questions)
}

// QuestionsFor returns the bank entries for a topic.
func (b *Bank) QuestionsFor(topic string) []Question {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Question
	for _, q := range b.questions {
		if strings.EqualFold(q.Topic, topic) {
			out = append(out, q)
		}
	}
	return out
}

// Unasked returns the topic's entries whose question text does not already
// appear in askedText (the concatenated interviewer turns). Substring
// matching is best-effort: a rephrased duplicate slips through.
func (b *Bank) Unasked(topic string, askedText string) []Question {
	var out []Question
	for _, q := range b.QuestionsFor(topic) {
		if !strings.Contains(askedText, q.Question) {
			out = append(out, q)
		}
	}
	return out
}

// Watch reloads the bank when its file changes, until ctx is cancelled.
// Watching the parent directory catches editors that replace the file.
func (b *Bank) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-watcher.Events:
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if filepath.Base(evt.Name) != filepath.Base(b.path) {
					continue
				}
				if err := b.reload(); err != nil {
					log.Printf("question bank reload failed: %v", err)
					continue
				}
				log.Printf("question bank reloaded: %d questions", b.Len())
			case err := <-watcher.Errors:
				log.Printf("question bank watcher error: %v", err)
			}
		}
	}()
	return watcher.Add(filepath.Dir(b.path))
}
