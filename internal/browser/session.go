package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

var (
	// ErrClosed is returned when a closed session is used.
	ErrClosed = errors.New("browser session closed")
	// ErrNoPage is returned when an operation needs a page and none was opened.
	ErrNoPage = errors.New("page not initialized")
)

const defaultTimeout = 30 * time.Second

// Options configure a browser session.
type Options struct {
	Headless bool
	SlowMo   time.Duration
	// Timeout is the default budget for one operation. Action and navigation
	// budgets default to a sixth and a half of it.
	Timeout           time.Duration
	ActionTimeout     time.Duration
	NavigationTimeout time.Duration
	Device            Device
	// BaseURL resolves relative navigation targets.
	BaseURL string
	Trace   bool
	// ExecPath points at a Chrome binary; empty lets chromedp search.
	ExecPath string
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return defaultTimeout
	}
	return o.Timeout
}

func (o Options) actionTimeout() time.Duration {
	if o.ActionTimeout > 0 {
		return o.ActionTimeout
	}
	return o.timeout() / 6
}

func (o Options) navigationTimeout() time.Duration {
	if o.NavigationTimeout > 0 {
		return o.NavigationTimeout
	}
	return o.timeout() / 2
}

func (o Options) device() Device {
	if o.Device.Width == 0 || o.Device.Height == 0 {
		d, _ := LookupDevice(DefaultDevice)
		return d
	}
	return o.Device
}

// Session owns one Chromium process and the pages opened in it.
type Session struct {
	opts   Options
	logger *zap.Logger
	pacer  *pacer
	tracer *Tracer

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu     sync.Mutex
	pages  []*Page
	page   *Page
	closed bool
}

// Launch starts Chromium. The process lives until Close or until ctx is done.
func Launch(ctx context.Context, opts Options, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions(opts)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(logger.Sugar().Debugf))

	// An empty run starts the browser so launch failures surface here.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	logger.Debug("browser launched",
		zap.Bool("headless", opts.Headless),
		zap.Duration("slow_mo", opts.SlowMo),
		zap.String("device", opts.device().Name),
	)

	return &Session{
		opts:          opts,
		logger:        logger,
		pacer:         newPacer(opts.SlowMo),
		tracer:        NewTracer(opts.Trace),
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	dev := opts.device()

	out := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	out = append(out,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.WindowSize(dev.Width, dev.Height),
	)
	if dev.UserAgent != "" {
		out = append(out, chromedp.UserAgent(dev.UserAgent))
	}
	if opts.ExecPath != "" {
		out = append(out, chromedp.ExecPath(opts.ExecPath))
	}
	return out
}

// Options returns the options the session was launched with.
func (s *Session) Options() Options {
	return s.opts
}

// Tracer exposes the action trace shared by every page of the session.
func (s *Session) Tracer() *Tracer {
	return s.tracer
}

// Page returns the current page, opening one on first use.
func (s *Session) Page(ctx context.Context) (*Page, error) {
	s.mu.Lock()
	current := s.page
	s.mu.Unlock()

	if current != nil {
		return current, nil
	}
	return s.NewPage(ctx)
}

// NewPage opens a tab emulating the session device and makes it current.
func (s *Session) NewPage(ctx context.Context) (*Page, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	tabCtx, tabCancel := chromedp.NewContext(s.browserCtx)
	s.mu.Unlock()

	p := &Page{
		ctx:     tabCtx,
		cancel:  tabCancel,
		session: s,
	}

	if err := p.emulate(ctx, s.opts.device()); err != nil {
		tabCancel()
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		tabCancel()
		return nil, ErrClosed
	}
	s.pages = append(s.pages, p)
	s.page = p
	return p, nil
}

// Close shuts down every page and the browser. It is safe to call twice.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	pages := s.pages
	s.pages = nil
	s.page = nil
	s.mu.Unlock()

	for _, p := range pages {
		p.cancel()
	}
	s.browserCancel()
	s.allocCancel()

	s.logger.Debug("browser closed")
	return nil
}

func (s *Session) resolveURL(target string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", target, err)
	}
	if u.IsAbs() || s.opts.BaseURL == "" {
		return target, nil
	}

	base, err := url.Parse(strings.TrimRight(s.opts.BaseURL, "/") + "/")
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", s.opts.BaseURL, err)
	}
	return base.ResolveReference(&url.URL{Path: strings.TrimLeft(u.Path, "/"), RawQuery: u.RawQuery, Fragment: u.Fragment}).String(), nil
}

func emulationActions(dev Device) []chromedp.Action {
	viewportOpts := []chromedp.EmulateViewportOption{}
	if dev.Scale > 0 {
		viewportOpts = append(viewportOpts, chromedp.EmulateScale(dev.Scale))
	}
	if dev.Mobile {
		viewportOpts = append(viewportOpts, chromedp.EmulateMobile)
	}
	if dev.Touch {
		viewportOpts = append(viewportOpts, chromedp.EmulateTouch)
	}

	actions := []chromedp.Action{
		chromedp.EmulateViewport(int64(dev.Width), int64(dev.Height), viewportOpts...),
	}
	if dev.UserAgent != "" {
		actions = append(actions, emulation.SetUserAgentOverride(dev.UserAgent))
	}
	return actions
}
