package bgg

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/openshelf/meeplesync/config"
	"github.com/openshelf/meeplesync/models"
)

// browser renders pages the fallback backend cannot get as JSON. Every call
// launches a browser, loads one page, extracts, and tears the session down
// on every exit path; nothing browser-scoped outlives a call.
type browser struct {
	cfg config.BrowserConfig
}

func newBrowser(cfg config.BrowserConfig) *browser {
	return &browser{cfg: cfg}
}

// renderPage loads url in a fresh headless session and returns the rendered
// HTML once the DOM has settled.
func (b *browser) renderPage(ctx context.Context, url string) (string, error) {
	timeout := b.cfg.PageTimeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	l := launcher.New().
		Headless(b.cfg.Headless).
		NoSandbox(b.cfg.NoSandbox)
	if b.cfg.BrowserBin != "" {
		l = l.Bin(b.cfg.BrowserBin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return "", models.NewSyncError(models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}

	br := rod.New().ControlURL(controlURL).Context(ctx)
	if err := br.Connect(); err != nil {
		l.Cleanup()
		return "", models.NewSyncError(models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}
	defer func() {
		if closeErr := br.Close(); closeErr != nil {
			slog.Warn("browser close failed", "error", closeErr)
		}
		l.Cleanup()
	}()

	page, err := stealth.Page(br)
	if err != nil {
		return "", models.NewSyncError(models.ErrCodeBrowserCrash, "failed to open page", err)
	}

	// A plain referer keeps the front end from treating the session as a
	// deep-linked bot.
	_ = proto.NetworkSetExtraHTTPHeaders{
		Headers: proto.NetworkHeaders{"Referer": gson.New(defaultSiteBase + "/")},
	}.Call(page)

	p := page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return "", categorizeError(err, "navigation to remote page failed")
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("DOM did not settle, extracting current state", "url", url, "error", err)
	}

	html, err := p.HTML()
	if err != nil {
		return "", categorizeError(err, "failed to extract rendered page")
	}
	return html, nil
}

// categorizeError wraps raw errors into typed SyncErrors.
func categorizeError(err error, msg string) *models.SyncError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewSyncError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewSyncError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewSyncError(models.ErrCodeRemoteDown, msg, err)
	}
}
