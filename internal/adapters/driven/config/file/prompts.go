package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
	"github.com/custodia-labs/kbrag/internal/logger"
)

// Ensure PromptStore implements the interfaces.
var (
	_ driven.PromptStore   = (*PromptStore)(nil)
	_ driven.PromptWatcher = (*PromptStore)(nil)
)

// promptExt is the extension of prompt template files.
const promptExt = ".txt"

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// Files are only created when first accessed, not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptAnswerWithContext: `You are a helpful AI assistant. Answer the user's question using the provided context information. If the context doesn't contain enough information to fully answer the question, say so and provide what information you can.

Context Information (%d relevant sources):
%s

User Question: %s

Please provide a comprehensive and accurate answer based on the context provided.`,

	driven.PromptAnswerWithoutContext: `You are a helpful AI assistant. The user has asked a question, but no relevant context was found in the knowledge base. Please provide a helpful response acknowledging this limitation.

User Question: %s

Please provide a helpful response.`,
}

// DefaultPrompt returns the embedded template for name.
func DefaultPrompt(name string) (string, bool) {
	prompt, ok := defaultPrompts[name]
	return prompt, ok
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.kbrag/prompts/.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Falls back to the embedded default if the file can't be read.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil || prompt == "" {
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		if err == nil {
			err = os.ErrNotExist
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Another goroutine may have loaded it first; keep their value.
	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// Watch reloads prompts whenever a template file in the prompt directory
// changes. It blocks until ctx is cancelled.
func (s *PromptStore) Watch(ctx context.Context) error {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return s.initErr
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.promptDir); err != nil {
		return fmt.Errorf("watch %s: %w", s.promptDir, err)
	}
	logger.Debug("watching prompts in %s", s.promptDir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != promptExt {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Info("prompt %s changed, reloading", filepath.Base(event.Name))
			s.Reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("prompt watcher: %v", err)
		}
	}
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+promptExt)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+promptExt)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# kbrag Prompts

This directory contains the prompts used to answer questions.

## Files

- ` + "`answer_with_context.txt`" + ` - Answers from retrieved help-center articles
- ` + "`answer_without_context.txt`" + ` - Answers when nothing relevant was found

## Customisation

Edit any file to customise the answers. ` + "`kbrag serve`" + ` picks up
changes immediately; other commands read them on the next run.

## Format Placeholders

- ` + "`answer_with_context`" + `: ` + "`%d`" + ` source count, ` + "`%s`" + ` context, ` + "`%s`" + ` question
- ` + "`answer_without_context`" + `: ` + "`%s`" + ` question

Keep the placeholders in the same order.
`
	return os.WriteFile(path, []byte(content), 0600)
}
