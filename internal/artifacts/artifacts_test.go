package artifacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/eugenenazirov/docs-e2e/internal/helpers"
)

func TestSaveScreenshot(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(t.TempDir(), WithClock(func() time.Time { return now }))

	att, err := store.SaveScreenshot("failed-Navigate to docs", []byte{0x89, 'P', 'N', 'G'})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := filepath.Join(store.Root(), "screenshots", "failed-Navigate-to-docs.png"); att.Path != want {
		t.Fatalf("expected path %s, got %s", want, att.Path)
	}
	if att.MediaType != "image/png" || att.Size != 4 || !att.CreatedAt.Equal(now) {
		t.Fatalf("unexpected attachment: %+v", att)
	}
	if _, err := os.Stat(att.Path); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}
}

func TestSavePageAndTrace(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())

	page, err := store.SavePage("search", "<html></html>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Kind != KindPage || filepath.Ext(page.Path) != ".html" {
		t.Fatalf("unexpected page attachment: %+v", page)
	}

	trace, err := store.SaveTrace("search", []map[string]string{{"action": "navigate"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(trace.Path)
	if err != nil {
		t.Fatalf("read trace: %v", err)
	}
	var decoded []map[string]string
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("trace is not valid JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0]["action"] != "navigate" {
		t.Fatalf("unexpected trace contents: %v", decoded)
	}
}

func TestSaveRejectsEmptyName(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	if _, err := store.SaveScreenshot("   ", nil); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestSaveKeepsFilesInsideRoot(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	att, err := store.SavePage("../../escape", "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Dir(att.Path) != filepath.Join(store.Root(), "pages") {
		t.Fatalf("artifact escaped its directory: %s", att.Path)
	}
}

func TestSaveKeepsNamesWithSeparators(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	first, err := store.SaveScreenshot("failed-"+helpers.TimestampedName("Open docs/api page", at), []byte("1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(store.Root(), "screenshots", "failed-Open-docs-api-page-2024-01-01T00-00-00-000Z.png")
	if first.Path != want {
		t.Fatalf("expected %s, got %s", want, first.Path)
	}

	second, err := store.SaveScreenshot("failed-"+helpers.TimestampedName("Open blog/api page", at), []byte("2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Path == first.Path {
		t.Fatalf("scenarios differing before the separator share %s", first.Path)
	}
}

func TestAttachmentsDefensiveCopy(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	if _, err := store.SavePage("one", "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := store.Attachments()
	got[0].Name = "mutated"
	if store.Attachments()[0].Name != "one" {
		t.Fatalf("expected defensive copy")
	}
}

func TestStoreConcurrentWrites(t *testing.T) {
	store := NewStore(t.TempDir())
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := store.SavePage(fmt.Sprintf("page-%d", i), "<p></p>"); err != nil {
				t.Errorf("SavePage failed: %v", err)
			}
		}(i)
	}

	wg.Wait()

	if n := len(store.Attachments()); n != 16 {
		t.Fatalf("expected 16 attachments, got %d", n)
	}
}
