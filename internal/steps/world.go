package steps

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/docs-e2e/internal/apiclient"
	"github.com/eugenenazirov/docs-e2e/internal/browser"
	"github.com/eugenenazirov/docs-e2e/internal/pages"
)

// Page is what steps need from a browser tab.
type Page interface {
	pages.Browser
	Content(ctx context.Context) (string, error)
	SetViewport(ctx context.Context, width, height int) error
}

// Browser is a launched browser that can open pages.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Trace() []browser.TraceEntry
	Close() error
}

// Launcher starts a Browser with the given options.
type Launcher func(ctx context.Context, opts browser.Options, logger *zap.Logger) (Browser, error)

// LaunchChrome is the default Launcher backed by chromedp.
func LaunchChrome(ctx context.Context, opts browser.Options, logger *zap.Logger) (Browser, error) {
	s, err := browser.Launch(ctx, opts, logger)
	if err != nil {
		return nil, err
	}
	return chromeBrowser{session: s}, nil
}

type chromeBrowser struct {
	session *browser.Session
}

func (b chromeBrowser) NewPage(ctx context.Context) (Page, error) {
	p, err := b.session.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (b chromeBrowser) Trace() []browser.TraceEntry {
	return b.session.Tracer().Entries()
}

func (b chromeBrowser) Close() error {
	return b.session.Close()
}

// World is the state shared by the steps of one scenario.
type World struct {
	TestName  string
	StartTime time.Time

	browser Browser
	page    Page
	home    *pages.Home
	api     *apiclient.Client
}

var _ Page = (*browser.Page)(nil)

type worldKey struct{}

func withWorld(ctx context.Context, w *World) context.Context {
	return context.WithValue(ctx, worldKey{}, w)
}

// WorldFrom returns the scenario world stored in ctx.
func WorldFrom(ctx context.Context) (*World, bool) {
	w, ok := ctx.Value(worldKey{}).(*World)
	return w, ok
}
