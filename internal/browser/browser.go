package browser

import (
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/ivlev/pagecast/internal/config"
)

// Controller is the subset of browser behavior the capture sequence
// needs. Rod is the only implementation outside of tests.
type Controller interface {
	Navigate(url string) error
	ScrollOffset() (float64, error)
	ScrollTo(offset float64) error
	ViewportHeight() (float64, error)
	SectionTop(selector string) (top float64, found bool, err error)
	Close() error
}

// Rod drives a Chromium page over the DevTools protocol.
type Rod struct {
	browser *rod.Browser
	page    *rod.Page
}

// Launch starts a browser and opens a blank page sized to the
// configured frame dimensions.
func Launch(cfg *config.Config) (*Rod, error) {
	l := launcher.New().Headless(cfg.Headless)
	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("open page: %w", err)
	}

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             cfg.Width,
		Height:            cfg.Height,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	return &Rod{browser: b, page: page}, nil
}

// Page exposes the underlying page for the recorder to bind to.
func (r *Rod) Page() *rod.Page { return r.page }

// Navigate loads url and blocks until the network goes idle.
func (r *Rod) Navigate(url string) error {
	wait := r.page.WaitNavigation(proto.PageLifecycleEventNameNetworkIdle)
	if err := r.page.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	wait()
	return nil
}

// ScrollOffset reads the current vertical scroll position.
func (r *Rod) ScrollOffset() (float64, error) {
	res, err := r.page.Eval(`() => window.scrollY`)
	if err != nil {
		return 0, fmt.Errorf("read scroll offset: %w", err)
	}
	return res.Value.Num(), nil
}

// ScrollTo sets the vertical scroll position.
func (r *Rod) ScrollTo(offset float64) error {
	_, err := r.page.Eval(`y => window.scrollTo(0, y)`, offset)
	if err != nil {
		return fmt.Errorf("scroll to %.0f: %w", offset, err)
	}
	return nil
}

// ViewportHeight reads the inner height of the window.
func (r *Rod) ViewportHeight() (float64, error) {
	res, err := r.page.Eval(`() => window.innerHeight`)
	if err != nil {
		return 0, fmt.Errorf("read viewport height: %w", err)
	}
	return res.Value.Num(), nil
}

// SectionTop reports the viewport-relative top of the first element
// matching selector. found is false when the page has no match.
func (r *Rod) SectionTop(selector string) (float64, bool, error) {
	has, el, err := r.page.Has(selector)
	if err != nil {
		return 0, false, fmt.Errorf("query %q: %w", selector, err)
	}
	if !has {
		return 0, false, nil
	}

	res, err := el.Eval(`() => this.getBoundingClientRect().top`)
	if err != nil {
		return 0, false, fmt.Errorf("bounding box of %q: %w", selector, err)
	}
	return res.Value.Num(), true, nil
}

// Close shuts down the browser and its page.
func (r *Rod) Close() error {
	return r.browser.Close()
}
