// Package shapelive runs the shape style initializer on live pages,
// driving Chrome through the DevTools protocol.
// The attributes of the shape elements are collected by a script, the
// styles are resolved in Go with package shape, then written back with
// style.setProperty by a second script.
package shapelive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benoitkugler/marbles/shape"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// Config tells how to reach Chrome.
type Config struct {
	DebuggerURL string // connect to this instance when set
	Bin         string // browser binary to launch, found automatically if empty
	Headless    bool
	Timeout     time.Duration // page load timeout, 30s if zero
}

// Options controls one initialization pass.
type Options struct {
	Selector string // ".shape" if empty
	shape.Options
}

// Session owns a browser connection and the pages it opened.
type Session struct {
	cfg     Config
	log     *zap.Logger
	mu      sync.Mutex
	browser *rod.Browser
	pages   []*rod.Page
}

const defaultSelector = ".shape"

var errClosed = errors.New("session closed")

// Open connects to Chrome, launching it when no debugger URL is configured.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	controlURL := cfg.DebuggerURL
	if controlURL == "" {
		l := launcher.New().Headless(cfg.Headless)
		if cfg.Bin != "" {
			l = l.Bin(cfg.Bin)
		}
		u, err := l.Context(ctx).Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = u
		logger.Debug("browser launched", zap.String("control_url", controlURL))
	}
	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	return &Session{cfg: cfg, log: logger, browser: browser}, nil
}

func (s *Session) timeout() time.Duration {
	if s.cfg.Timeout > 0 {
		return s.cfg.Timeout
	}
	return 30 * time.Second
}

// Initialize opens url in a new page, waits for it to load and styles
// its shapes. The page stays open until Close, so that the result can
// be inspected.
func (s *Session) Initialize(ctx context.Context, url string, opts Options) ([]shape.Entry, error) {
	s.mu.Lock()
	browser := s.browser
	s.mu.Unlock()
	if browser == nil {
		return nil, errClosed
	}
	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", url, err)
	}
	s.mu.Lock()
	s.pages = append(s.pages, page)
	s.mu.Unlock()

	if err = page.Timeout(s.timeout()).WaitLoad(); err != nil {
		return nil, fmt.Errorf("load %s: %w", url, err)
	}
	s.log.Debug("page loaded", zap.String("url", url))
	return InitializePage(ctx, page, opts)
}

// InitializePage styles the shapes of an already loaded page.
func InitializePage(ctx context.Context, page *rod.Page, opts Options) ([]shape.Entry, error) {
	selector := opts.Selector
	if selector == "" {
		selector = defaultSelector
	}
	res, err := page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:      collectScript,
		JSArgs:  []interface{}{selector, opts.Names.List()},
		ByValue: true,
	})
	if err != nil {
		return nil, fmt.Errorf("collect shapes: %w", err)
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var collected []collectedElement
	if err = json.Unmarshal(raw, &collected); err != nil {
		return nil, fmt.Errorf("collect shapes: %w", err)
	}

	entries, updates, err := resolve(collected, opts.Options)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return entries, nil
	}
	if _, err = page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:     applyScript,
		JSArgs: []interface{}{selector, updates},
	}); err != nil {
		return nil, fmt.Errorf("apply styles: %w", err)
	}
	return entries, nil
}

// Close closes the opened pages and the browser connection.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser == nil {
		return nil
	}
	for _, page := range s.pages {
		_ = page.Close()
	}
	s.pages = nil
	err := s.browser.Close()
	s.browser = nil
	return err
}
