package pages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/eugenenazirov/docs-e2e/internal/artifacts"
	"github.com/eugenenazirov/docs-e2e/internal/browser"
)

const defaultWaitTimeout = 5 * time.Second

// Browser is the subset of browser.Page the page objects drive.
type Browser interface {
	Navigate(ctx context.Context, target string) error
	WaitForLoad(ctx context.Context) error
	Click(ctx context.Context, sel browser.Selector) error
	Fill(ctx context.Context, sel browser.Selector, text string) error
	Press(ctx context.Context, key string) error
	Text(ctx context.Context, sel browser.Selector) (string, error)
	IsVisible(ctx context.Context, sel browser.Selector) (bool, error)
	WaitVisible(ctx context.Context, sel browser.Selector, timeout time.Duration) error
	Title(ctx context.Context) (string, error)
	URL(ctx context.Context) (string, error)
	Screenshot(ctx context.Context, fullPage bool) ([]byte, error)
}

var _ Browser = (*browser.Page)(nil)

// Base carries the behaviour shared by every page object.
type Base struct {
	page      Browser
	path      string
	artifacts *artifacts.Store
}

// NewBase binds a page object to path. store may be nil when screenshots are not needed.
func NewBase(page Browser, path string, store *artifacts.Store) Base {
	return Base{page: page, path: path, artifacts: store}
}

// Path is the location the page object navigates to.
func (b Base) Path() string {
	return b.path
}

// Navigate opens the page.
func (b Base) Navigate(ctx context.Context) error {
	return b.page.Navigate(ctx, b.path)
}

// WaitForLoad blocks until the document has finished loading.
func (b Base) WaitForLoad(ctx context.Context) error {
	return b.page.WaitForLoad(ctx)
}

// TakeScreenshot stores a full-page screenshot under name.
func (b Base) TakeScreenshot(ctx context.Context, name string) (artifacts.Attachment, error) {
	if b.artifacts == nil {
		return artifacts.Attachment{}, fmt.Errorf("take screenshot %q: no artifact store configured", name)
	}
	png, err := b.page.Screenshot(ctx, true)
	if err != nil {
		return artifacts.Attachment{}, err
	}
	return b.artifacts.SaveScreenshot(name, png)
}

// Store returns the artifact store, which may be nil.
func (b Base) Store() *artifacts.Store {
	return b.artifacts
}

// Title returns the document title.
func (b Base) Title(ctx context.Context) (string, error) {
	return b.page.Title(ctx)
}

// CurrentURL returns the page location.
func (b Base) CurrentURL(ctx context.Context) (string, error) {
	return b.page.URL(ctx)
}

// ClickElement clicks sel.
func (b Base) ClickElement(ctx context.Context, sel browser.Selector) error {
	return b.page.Click(ctx, sel)
}

// FillInput types text into sel.
func (b Base) FillInput(ctx context.Context, sel browser.Selector, text string) error {
	return b.page.Fill(ctx, sel, text)
}

// Text returns the text of sel.
func (b Base) Text(ctx context.Context, sel browser.Selector) (string, error) {
	return b.page.Text(ctx, sel)
}

// IsVisible reports whether sel is rendered right now.
func (b Base) IsVisible(ctx context.Context, sel browser.Selector) (bool, error) {
	return b.page.IsVisible(ctx, sel)
}

// WaitForElement waits for sel; a zero timeout means five seconds.
func (b Base) WaitForElement(ctx context.Context, sel browser.Selector, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = defaultWaitTimeout
	}
	return b.page.WaitVisible(ctx, sel, timeout)
}

// ExpectVisible fails unless sel becomes visible within the default wait.
func (b Base) ExpectVisible(ctx context.Context, sel browser.Selector) error {
	if err := b.WaitForElement(ctx, sel, 0); err != nil {
		return fmt.Errorf("expected %s to be visible: %w", sel, err)
	}
	return nil
}

// ExpectText fails unless the trimmed text of sel equals want.
func (b Base) ExpectText(ctx context.Context, sel browser.Selector, want string) error {
	got, err := b.Text(ctx, sel)
	if err != nil {
		return err
	}
	if strings.TrimSpace(got) != want {
		return fmt.Errorf("expected %s to have text %q, got %q", sel, want, got)
	}
	return nil
}
