package config

import (
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// DefaultBackfillDays is the history window used when none is configured.
const DefaultBackfillDays = 14

// Settings holds the persisted user configuration.
type Settings struct {
	// Excluded is a list of patterns; pages whose host or URL matches any
	// of them are never captured.
	Excluded []string `toml:"excluded"`

	// BackfillDays is the default history window for backfill runs.
	BackfillDays int `toml:"backfill_days"`

	// Embedding selects and configures the embedding backend.
	Embedding EmbeddingSettings `toml:"embedding"`
}

// EmbeddingSettings configures the embedding backend.
type EmbeddingSettings struct {
	Provider string `toml:"provider"`
	BaseURL  string `toml:"base_url"`
	Model    string `toml:"model"`
}

// DefaultSettings returns the out-of-the-box configuration. The default
// exclusions keep mail, account, and payment pages out of the index.
func DefaultSettings() Settings {
	return Settings{
		Excluded: []string{
			"mail.google.", "accounts.google.", "calendar.google.",
			"paypal.com", "bank", "secure", "auth", "login",
		},
		BackfillDays: DefaultBackfillDays,
	}
}

// Store is a file-based settings store using TOML.
type Store struct {
	mu       sync.RWMutex
	filePath string
	settings Settings
}

// NewStore creates a TOML-backed settings store. If configDir is empty it
// defaults to ~/.recollect. Missing files yield the default settings; the
// file is only written on Save.
func NewStore(configDir string) (*Store, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".recollect")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &Store{
		filePath: filepath.Join(configDir, "config.toml"),
		settings: DefaultSettings(),
	}

	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	// Unmarshal over the defaults so absent keys keep their default values.
	settings := DefaultSettings()
	if err := toml.Unmarshal(data, &settings); err != nil {
		return err
	}

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	return nil
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.settings
	out.Excluded = append([]string(nil), s.settings.Excluded...)
	return out
}

// Save persists the settings and makes them current.
func (s *Store) Save(settings Settings) error {
	data, err := toml.Marshal(settings)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return err
	}
	s.settings = settings
	s.settings.Excluded = append([]string(nil), settings.Excluded...)
	return nil
}

// CompilePatterns compiles exclusion patterns into case-insensitive
// regexps. Patterns that fail to compile fall back to a literal match.
func CompilePatterns(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(p))
		}
		out = append(out, re)
	}
	return out
}

// Excluded reports whether a page's host or URL matches any pattern.
func Excluded(patterns []*regexp.Regexp, host, url string) bool {
	for _, re := range patterns {
		if re.MatchString(host) || re.MatchString(url) {
			return true
		}
	}
	return false
}
