package pages

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eugenenazirov/docs-e2e/internal/artifacts"
	"github.com/eugenenazirov/docs-e2e/internal/browser"
)

type fakePage struct {
	calls    []string
	visible  map[string]bool
	texts    map[string]string
	failWait map[string]bool
	url      string
}

func newFakePage() *fakePage {
	return &fakePage{
		visible:  map[string]bool{},
		texts:    map[string]string{},
		failWait: map[string]bool{},
	}
}

func (f *fakePage) record(call string) { f.calls = append(f.calls, call) }

func (f *fakePage) Navigate(_ context.Context, target string) error {
	f.record("navigate " + target)
	f.url = "https://playwright.dev" + target
	return nil
}

func (f *fakePage) WaitForLoad(context.Context) error {
	f.record("wait-load")
	return nil
}

func (f *fakePage) Click(_ context.Context, sel browser.Selector) error {
	f.record("click " + sel.Query)
	return nil
}

func (f *fakePage) Fill(_ context.Context, sel browser.Selector, text string) error {
	f.record("fill " + text)
	return nil
}

func (f *fakePage) Press(_ context.Context, key string) error {
	f.record("press " + key)
	return nil
}

func (f *fakePage) Text(_ context.Context, sel browser.Selector) (string, error) {
	return f.texts[sel.Query], nil
}

func (f *fakePage) IsVisible(_ context.Context, sel browser.Selector) (bool, error) {
	return f.visible[sel.Query], nil
}

func (f *fakePage) WaitVisible(_ context.Context, sel browser.Selector, timeout time.Duration) error {
	f.record("wait " + timeout.String())
	if f.failWait[sel.Query] {
		return errors.New("timeout")
	}
	return nil
}

func (f *fakePage) Title(context.Context) (string, error) {
	return "Fast and reliable end-to-end testing for modern web apps | Playwright", nil
}

func (f *fakePage) URL(context.Context) (string, error) {
	return f.url, nil
}

func (f *fakePage) Screenshot(context.Context, bool) ([]byte, error) {
	return []byte("png"), nil
}

func TestHomeNavigate(t *testing.T) {
	page := newFakePage()
	home := NewHome(page, nil)

	require.NoError(t, home.Navigate(context.Background()))
	require.NoError(t, home.WaitForLoad(context.Background()))

	assert.Equal(t, []string{"navigate /", "wait-load"}, page.calls)

	got, err := home.CurrentURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://playwright.dev/", got)

	title, err := home.Title(context.Background())
	require.NoError(t, err)
	assert.Contains(t, title, "Playwright")
}

func TestHomeSearchOpensDialogWhenInputHidden(t *testing.T) {
	page := newFakePage()
	home := NewHome(page, nil)

	require.NoError(t, home.SearchDocs(context.Background(), "API testing"))
	assert.Equal(t, []string{"click " + searchButton.Query, "fill API testing", "press Enter"}, page.calls)
}

func TestHomeSearchSkipsDialogWhenInputVisible(t *testing.T) {
	page := newFakePage()
	page.visible[searchInput.Query] = true
	home := NewHome(page, nil)

	require.NoError(t, home.SearchDocs(context.Background(), "locators"))
	assert.Equal(t, []string{"fill locators", "press Enter"}, page.calls)
}

func TestHomeVerifyPageElements(t *testing.T) {
	page := newFakePage()
	home := NewHome(page, nil)

	require.NoError(t, home.VerifyPageElements(context.Background()))
	assert.Len(t, page.calls, 3)
	assert.Equal(t, "wait 5s", page.calls[0])

	page.failWait[docsLink.Query] = true
	err := home.VerifyPageElements(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "to be visible")
}

func TestHomeClicks(t *testing.T) {
	page := newFakePage()
	home := NewHome(page, nil)

	require.NoError(t, home.ClickGetStarted(context.Background()))
	require.NoError(t, home.ClickDocs(context.Background()))
	assert.Equal(t, []string{"click " + getStartedLink.Query, "click " + docsLink.Query}, page.calls)
}

func TestExpectText(t *testing.T) {
	page := newFakePage()
	page.texts[mainHeading.Query] = "  Playwright enables reliable end-to-end testing  "
	home := NewHome(page, nil)

	heading, err := home.MainHeadingText(context.Background())
	require.NoError(t, err)
	assert.Contains(t, heading, "reliable")

	require.NoError(t, home.ExpectText(context.Background(), mainHeading, "Playwright enables reliable end-to-end testing"))
	assert.Error(t, home.ExpectText(context.Background(), mainHeading, "Something else"))
}

func TestTakeScreenshot(t *testing.T) {
	page := newFakePage()

	_, err := NewHome(page, nil).TakeScreenshot(context.Background(), "home")
	assert.Error(t, err)

	store := artifacts.NewStore(t.TempDir())
	att, err := NewHome(page, store).TakeScreenshot(context.Background(), "home page test complete")
	require.NoError(t, err)

	data, err := os.ReadFile(att.Path)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
	assert.Equal(t, "home-page-test-complete", att.Name)
}

func TestWaitForElementCustomTimeout(t *testing.T) {
	page := newFakePage()
	base := NewBase(page, "/docs/intro", nil)

	require.NoError(t, base.WaitForElement(context.Background(), browser.CSS("article"), 2*time.Second))
	assert.Equal(t, []string{"wait 2s"}, page.calls)
	assert.Equal(t, "/docs/intro", base.Path())
}
