package director

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/ivlev/pagecast/internal/config"
)

// fakeRun collects the observable call sequence of one run.
type fakeRun struct {
	events []string
}

type fakeBrowser struct {
	run      *fakeRun
	offset   float64
	viewport float64
	tops     map[string]float64
	navErr   error
	closes   int
}

func (f *fakeBrowser) Navigate(url string) error {
	f.run.events = append(f.run.events, "navigate "+url)
	return f.navErr
}

func (f *fakeBrowser) ScrollOffset() (float64, error) { return f.offset, nil }

func (f *fakeBrowser) ScrollTo(offset float64) error {
	f.offset = offset
	f.run.events = append(f.run.events, fmt.Sprintf("scroll %.0f", offset))
	return nil
}

func (f *fakeBrowser) ViewportHeight() (float64, error) { return f.viewport, nil }

func (f *fakeBrowser) SectionTop(selector string) (float64, bool, error) {
	f.run.events = append(f.run.events, "locate "+selector)
	top, ok := f.tops[selector]
	return top, ok, nil
}

func (f *fakeBrowser) Close() error {
	f.closes++
	f.run.events = append(f.run.events, "close")
	return nil
}

type fakeRecorder struct {
	run     *fakeRun
	stops   int
	stopErr error
}

func (f *fakeRecorder) Start(output string) error {
	f.run.events = append(f.run.events, "start "+output)
	return nil
}

func (f *fakeRecorder) Stop() error {
	f.stops++
	f.run.events = append(f.run.events, "stop")
	return f.stopErr
}

// newTestDirector shrinks the animation to two updates per scroll and
// records pauses instead of sleeping through them.
func newTestDirector(b *fakeBrowser, r *fakeRecorder, run *fakeRun) *Director {
	d := New(config.New(""), b, r, DefaultSections())
	d.Animator.Steps = 1
	d.Animator.Sleep = func(time.Duration) {}
	d.Sleep = func(dur time.Duration) {
		run.events = append(run.events, fmt.Sprintf("sleep %d", dur.Milliseconds()))
	}
	return d
}

func TestRunSequence(t *testing.T) {
	run := &fakeRun{}
	b := &fakeBrowser{
		run:      run,
		viewport: 720,
		tops: map[string]float64{
			"#about": 500, "#skills": 500, "#projects": 500, "#contact": 500,
		},
	}
	r := &fakeRecorder{run: run}

	if err := newTestDirector(b, r, run).Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{
		"navigate http://localhost:3000",
		"start output/demo.mp4",
		"sleep 4000",
		"locate #about",
		"scroll 0", "scroll 320",
		"sleep 3000",
		"locate #skills",
		"scroll 320", "scroll 640",
		"sleep 3500",
		"locate #projects",
		"scroll 640", "scroll 960",
		"sleep 3500",
		"locate #contact",
		"scroll 960", "scroll 1280",
		"sleep 2500",
		"scroll 1280", "scroll 0",
		"sleep 2000",
		"stop",
		"close",
	}
	if !reflect.DeepEqual(run.events, want) {
		t.Errorf("event sequence mismatch\n got: %v\nwant: %v", run.events, want)
	}
	if b.closes != 1 {
		t.Errorf("browser closed %d times, want 1", b.closes)
	}
	if r.stops != 1 {
		t.Errorf("recorder stopped %d times, want 1", r.stops)
	}
}

func TestRunSkipsMissingSection(t *testing.T) {
	run := &fakeRun{}
	b := &fakeBrowser{
		run:      run,
		viewport: 720,
		tops: map[string]float64{
			"#about": 500, "#projects": 500, "#contact": 500,
		},
	}
	r := &fakeRecorder{run: run}

	if err := newTestDirector(b, r, run).Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{
		"navigate http://localhost:3000",
		"start output/demo.mp4",
		"sleep 4000",
		"locate #about",
		"scroll 0", "scroll 320",
		"sleep 3000",
		"locate #skills",
		"locate #projects",
		"scroll 320", "scroll 640",
		"sleep 3500",
		"locate #contact",
		"scroll 640", "scroll 960",
		"sleep 2500",
		"scroll 960", "scroll 0",
		"sleep 2000",
		"stop",
		"close",
	}
	if !reflect.DeepEqual(run.events, want) {
		t.Errorf("event sequence mismatch\n got: %v\nwant: %v", run.events, want)
	}
	if r.stops != 1 {
		t.Errorf("recorder stopped %d times, want 1", r.stops)
	}
}

func TestRunNavigationFailure(t *testing.T) {
	run := &fakeRun{}
	navErr := errors.New("connection refused")
	b := &fakeBrowser{run: run, viewport: 720, navErr: navErr}
	r := &fakeRecorder{run: run}

	err := newTestDirector(b, r, run).Run()
	if !errors.Is(err, navErr) {
		t.Fatalf("Run error = %v, want %v", err, navErr)
	}

	want := []string{
		"navigate http://localhost:3000",
		"stop",
		"close",
	}
	if !reflect.DeepEqual(run.events, want) {
		t.Errorf("event sequence mismatch\n got: %v\nwant: %v", run.events, want)
	}
	if b.closes != 1 {
		t.Errorf("browser closed %d times, want 1", b.closes)
	}
	if r.stops != 1 {
		t.Errorf("recorder stop attempted %d times, want 1", r.stops)
	}
}

func TestRunStopErrorAfterFailureIsSwallowed(t *testing.T) {
	run := &fakeRun{}
	navErr := errors.New("navigation timeout")
	b := &fakeBrowser{run: run, viewport: 720, navErr: navErr}
	r := &fakeRecorder{run: run, stopErr: errors.New("no frames captured")}

	err := newTestDirector(b, r, run).Run()
	if !errors.Is(err, navErr) {
		t.Fatalf("Run error = %v, want original %v", err, navErr)
	}
	if b.closes != 1 {
		t.Errorf("browser closed %d times, want 1", b.closes)
	}
}
