package artifacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/eugenenazirov/docs-e2e/internal/helpers"
)

// ErrEmptyName is returned when an artifact is saved without a name.
var ErrEmptyName = errors.New("artifact name must not be empty")

// Kind classifies a stored artifact.
type Kind string

const (
	KindScreenshot Kind = "screenshot"
	KindPage       Kind = "page"
	KindTrace      Kind = "trace"
)

// Attachment describes one file written by the Store.
type Attachment struct {
	Kind      Kind
	Name      string
	Path      string
	MediaType string
	Size      int
	CreatedAt time.Time
}

// Store writes run artifacts under a report directory and remembers what it
// wrote. It is safe for concurrent scenarios.
type Store struct {
	root  string
	clock func() time.Time

	mu          sync.RWMutex
	attachments []Attachment
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

// NewStore returns a Store rooted at dir. Directories are created lazily.
func NewStore(dir string, opts ...Option) *Store {
	s := &Store{
		root: dir,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the report directory.
func (s *Store) Root() string {
	return s.root
}

// SaveScreenshot writes a PNG under screenshots/.
func (s *Store) SaveScreenshot(name string, png []byte) (Attachment, error) {
	return s.write(KindScreenshot, "screenshots", name, ".png", "image/png", png)
}

// SavePage writes page source under pages/.
func (s *Store) SavePage(name, html string) (Attachment, error) {
	return s.write(KindPage, "pages", name, ".html", "text/html", []byte(html))
}

// SaveTrace encodes v as indented JSON under traces/.
func (s *Store) SaveTrace(name string, v any) (Attachment, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return Attachment{}, fmt.Errorf("encode trace: %w", err)
	}
	return s.write(KindTrace, "traces", name, ".json", "application/json", data)
}

// Attachments returns a copy of everything written so far, oldest first.
func (s *Store) Attachments() []Attachment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Attachment, len(s.attachments))
	copy(out, s.attachments)
	return out
}

func (s *Store) write(kind Kind, subdir, name, ext, mediaType string, data []byte) (Attachment, error) {
	slug := helpers.Slug(name)
	if slug == "" {
		return Attachment{}, ErrEmptyName
	}

	dir := filepath.Join(s.root, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Attachment{}, fmt.Errorf("create %s: %w", dir, err)
	}

	path := filepath.Join(dir, slug+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Attachment{}, fmt.Errorf("write %s: %w", kind, err)
	}

	att := Attachment{
		Kind:      kind,
		Name:      slug,
		Path:      path,
		MediaType: mediaType,
		Size:      len(data),
		CreatedAt: s.clock(),
	}

	s.mu.Lock()
	s.attachments = append(s.attachments, att)
	s.mu.Unlock()

	return att, nil
}
