package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"

	"github.com/eugenenazirov/docs-e2e/internal/helpers"
)

var keys = map[string]string{
	"Enter":     kb.Enter,
	"Escape":    kb.Escape,
	"Tab":       kb.Tab,
	"Backspace": kb.Backspace,
	"ArrowDown": kb.ArrowDown,
	"ArrowUp":   kb.ArrowUp,
}

// Page is one browser tab. Every method bounds its work with the session's
// action or navigation timeout and waits for the slow-mo pacer first.
type Page struct {
	ctx     context.Context
	cancel  context.CancelFunc
	session *Session
}

func (p *Page) run(ctx context.Context, action, target string, timeout time.Duration, tasks ...chromedp.Action) error {
	if err := p.session.pacer.Wait(ctx); err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}

	runCtx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	start := time.Now()
	err := chromedp.Run(runCtx, tasks...)
	p.session.tracer.Record(action, target, start, err)

	p.session.logger.Debug("browser action",
		zap.String("action", action),
		zap.String("target", target),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err),
	)

	if err != nil {
		if target != "" {
			return fmt.Errorf("%s failed on '%s': %w", action, target, err)
		}
		return fmt.Errorf("%s failed: %w", action, err)
	}
	return nil
}

func (p *Page) emulate(ctx context.Context, dev Device) error {
	return p.run(ctx, "emulate", dev.Name, p.session.opts.actionTimeout(), emulationActions(dev)...)
}

// Navigate loads target, resolving relative paths against the base URL.
func (p *Page) Navigate(ctx context.Context, target string) error {
	resolved, err := p.session.resolveURL(target)
	if err != nil {
		return err
	}
	return p.run(ctx, "navigate", resolved, p.session.opts.navigationTimeout(),
		chromedp.Navigate(resolved),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// WaitForLoad blocks until document.readyState is complete.
func (p *Page) WaitForLoad(ctx context.Context) error {
	timeout := p.session.opts.navigationTimeout()
	err := helpers.WaitForCondition(ctx, timeout, 100*time.Millisecond, func(ctx context.Context) (bool, error) {
		var state string
		if err := p.run(ctx, "ready-state", "", timeout, chromedp.Evaluate(`document.readyState`, &state)); err != nil {
			return false, err
		}
		return state == "complete", nil
	})
	if err != nil {
		return fmt.Errorf("wait for load: %w", err)
	}
	return nil
}

// Click waits for sel to be visible and clicks it.
func (p *Page) Click(ctx context.Context, sel Selector) error {
	return p.run(ctx, "click", sel.Query, p.session.opts.actionTimeout(),
		chromedp.WaitVisible(sel.Query, sel.by()),
		chromedp.Click(sel.Query, sel.by()),
	)
}

// Fill replaces the value of an input.
func (p *Page) Fill(ctx context.Context, sel Selector, text string) error {
	return p.run(ctx, "fill", sel.Query, p.session.opts.actionTimeout(),
		chromedp.WaitVisible(sel.Query, sel.by()),
		chromedp.Clear(sel.Query, sel.by()),
		chromedp.SendKeys(sel.Query, text, sel.by()),
	)
}

// Press dispatches a named key (Enter, Escape, Tab...) or literal text to the focused element.
func (p *Page) Press(ctx context.Context, key string) error {
	value, ok := keys[key]
	if !ok {
		value = key
	}
	return p.run(ctx, "press", key, p.session.opts.actionTimeout(), chromedp.KeyEvent(value))
}

// Text returns the text content of the first visible match.
func (p *Page) Text(ctx context.Context, sel Selector) (string, error) {
	var text string
	err := p.run(ctx, "text", sel.Query, p.session.opts.actionTimeout(),
		chromedp.WaitVisible(sel.Query, sel.by()),
		chromedp.Text(sel.Query, &text, sel.by()),
	)
	return text, err
}

// WaitVisible waits up to timeout for sel to become visible.
func (p *Page) WaitVisible(ctx context.Context, sel Selector, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = p.session.opts.actionTimeout()
	}
	return p.run(ctx, "wait-visible", sel.Query, timeout, chromedp.WaitVisible(sel.Query, sel.by()))
}

// IsVisible reports whether sel currently matches a rendered element. It does not wait.
func (p *Page) IsVisible(ctx context.Context, sel Selector) (bool, error) {
	script, err := selectorScript(sel, "visible")
	if err != nil {
		return false, err
	}
	var visible bool
	err = p.run(ctx, "is-visible", sel.Query, p.session.opts.actionTimeout(), chromedp.Evaluate(script, &visible))
	return visible, err
}

// Count returns how many elements match sel. It does not wait.
func (p *Page) Count(ctx context.Context, sel Selector) (int, error) {
	script, err := selectorScript(sel, "count")
	if err != nil {
		return 0, err
	}
	var n int
	err = p.run(ctx, "count", sel.Query, p.session.opts.actionTimeout(), chromedp.Evaluate(script, &n))
	return n, err
}

// Exists reports whether sel is attached within timeout.
func (p *Page) Exists(ctx context.Context, sel Selector, timeout time.Duration) bool {
	err := helpers.WaitForCondition(ctx, timeout, 100*time.Millisecond, func(ctx context.Context) (bool, error) {
		n, err := p.Count(ctx, sel)
		return n > 0, err
	})
	return err == nil
}

// ScrollIntoView scrolls sel into the viewport.
func (p *Page) ScrollIntoView(ctx context.Context, sel Selector) error {
	return p.run(ctx, "scroll-into-view", sel.Query, p.session.opts.actionTimeout(),
		chromedp.ScrollIntoView(sel.Query, sel.by()),
	)
}

// Title returns document.title.
func (p *Page) Title(ctx context.Context) (string, error) {
	var title string
	err := p.run(ctx, "title", "", p.session.opts.actionTimeout(), chromedp.Title(&title))
	return title, err
}

// URL returns the current location.
func (p *Page) URL(ctx context.Context) (string, error) {
	var location string
	err := p.run(ctx, "url", "", p.session.opts.actionTimeout(), chromedp.Location(&location))
	return location, err
}

// Content returns the serialized document.
func (p *Page) Content(ctx context.Context) (string, error) {
	var html string
	err := p.run(ctx, "content", "", p.session.opts.actionTimeout(),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	return html, err
}

// Screenshot captures a PNG of the viewport, or of the whole page when fullPage is set.
func (p *Page) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	var buf []byte
	var action chromedp.Action = chromedp.CaptureScreenshot(&buf)
	if fullPage {
		action = chromedp.FullScreenshot(&buf, 100)
	}
	err := p.run(ctx, "screenshot", "", p.session.opts.timeout(), action)
	return buf, err
}

// SetViewport resizes the emulated viewport.
func (p *Page) SetViewport(ctx context.Context, width, height int) error {
	return p.run(ctx, "set-viewport", fmt.Sprintf("%dx%d", width, height), p.session.opts.actionTimeout(),
		chromedp.EmulateViewport(int64(width), int64(height)),
	)
}

// Evaluate runs script and decodes its result into res.
func (p *Page) Evaluate(ctx context.Context, script string, res any) error {
	return p.run(ctx, "evaluate", "", p.session.opts.actionTimeout(), chromedp.Evaluate(script, res))
}

// Close closes the tab.
func (p *Page) Close() {
	p.cancel()
}

const selectorTemplate = `(() => {
  const q = %s;
  const nodes = [];
  if (%t) {
    const r = document.evaluate(q, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
    for (let i = 0; i < r.snapshotLength; i++) nodes.push(r.snapshotItem(i));
  } else {
    nodes.push(...document.querySelectorAll(q));
  }
  if (%q === "count") return nodes.length;
  return nodes.some((el) => {
    const rect = el.getBoundingClientRect();
    const style = getComputedStyle(el);
    return rect.width > 0 && rect.height > 0 && style.visibility !== "hidden" && style.display !== "none";
  });
})()`

func selectorScript(sel Selector, mode string) (string, error) {
	quoted, err := json.Marshal(sel.Query)
	if err != nil {
		return "", fmt.Errorf("quote selector: %w", err)
	}
	return fmt.Sprintf(selectorTemplate, quoted, sel.XPath, mode), nil
}
