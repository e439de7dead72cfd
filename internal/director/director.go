package director

import (
	"fmt"
	"log"
	"time"

	"github.com/ivlev/pagecast/internal/browser"
	"github.com/ivlev/pagecast/internal/config"
	"github.com/ivlev/pagecast/internal/recorder"
	"github.com/ivlev/pagecast/internal/scroll"
)

// Director runs the fixed capture sequence against a live page:
// navigate, settle, walk the sections top to bottom, return to the
// top, stop the recorder.
type Director struct {
	Config   *config.Config
	Browser  browser.Controller
	Recorder recorder.Recorder
	Sections []Section

	Animator *scroll.Animator
	Sleep    func(time.Duration)
}

// New wires a Director with default animation settings.
func New(cfg *config.Config, b browser.Controller, rec recorder.Recorder, sections []Section) *Director {
	return &Director{
		Config:   cfg,
		Browser:  b,
		Recorder: rec,
		Sections: sections,
		Animator: scroll.NewAnimator(),
		Sleep:    time.Sleep,
	}
}

// Run executes the capture from navigation to recorder stop. The
// browser is closed on every exit path; on failure the recorder is
// stopped best-effort before the close.
func (d *Director) Run() error {
	defer func() {
		if err := d.Browser.Close(); err != nil {
			log.Printf("[!] browser close: %v", err)
		}
	}()

	if err := d.capture(); err != nil {
		if serr := d.Recorder.Stop(); serr != nil {
			log.Printf("[!] recorder stop after failure: %v", serr)
		}
		return err
	}
	return nil
}

func (d *Director) capture() error {
	fmt.Printf("[*] Navigating to %s\n", d.Config.URL)
	if err := d.Browser.Navigate(d.Config.URL); err != nil {
		return err
	}

	fmt.Printf("[*] Recording to %s\n", d.Config.OutputVideo)
	if err := d.Recorder.Start(d.Config.OutputVideo); err != nil {
		return err
	}

	// Let entrance animations finish before anything moves.
	d.Sleep(d.Config.SettleDelay)

	for _, s := range d.Sections {
		if err := d.visit(s); err != nil {
			return err
		}
	}

	fmt.Printf("[*] Returning to top\n")
	if err := d.Animator.Animate(d.Browser, 0, d.Config.ReturnScroll); err != nil {
		return err
	}
	d.Sleep(d.Config.FinalHold)

	return d.Recorder.Stop()
}

// visit scrolls one section into view and dwells on it. A section
// that cannot be located is skipped with a warning; errors from the
// scroll itself abort the run.
func (d *Director) visit(s Section) error {
	top, found, err := d.Browser.SectionTop(s.Selector)
	if err != nil {
		log.Printf("[!] section %s (%s): %v, skipping", s.Name, s.Selector, err)
		return nil
	}
	if !found {
		log.Printf("[!] section %s (%s) not found, skipping", s.Name, s.Selector)
		return nil
	}

	current, err := d.Browser.ScrollOffset()
	if err != nil {
		log.Printf("[!] section %s: %v, skipping", s.Name, err)
		return nil
	}
	viewportHeight, err := d.Browser.ViewportHeight()
	if err != nil {
		log.Printf("[!] section %s: %v, skipping", s.Name, err)
		return nil
	}

	fmt.Printf("[*] Section %s\n", s.Name)
	target := scroll.TargetOffset(current, top, viewportHeight)
	if err := d.Animator.Animate(d.Browser, target, d.Config.SectionScroll); err != nil {
		return err
	}

	d.Sleep(s.Pause)
	return nil
}
