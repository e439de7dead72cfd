package recorder

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/icza/mjpeg"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/pagecast/internal/config"
	"github.com/ivlev/pagecast/internal/system"
)

// Recorder captures a page to a video file. Stop is safe to call
// more than once.
type Recorder interface {
	Start(output string) error
	Stop() error
}

// frame is one screencast frame as delivered by the browser.
type frame struct {
	data      []byte
	timestamp time.Time
}

// Typical size of a 720p screencast JPEG, used to budget the buffer.
const frameSizeEstimate = 256 * 1024

// Screencast records a page by subscribing to DevTools screencast
// frames, then assembling them into an MJPEG AVI and transcoding the
// result with ffmpeg.
type Screencast struct {
	page *rod.Page
	cfg  *config.Config

	mu      sync.Mutex
	frames  []frame
	dropped int
	started bool
	stopped bool

	maxFrames int
	output    string
	cancel    context.CancelFunc
}

// NewScreencast binds a recorder to a page.
func NewScreencast(page *rod.Page, cfg *config.Config) *Screencast {
	return &Screencast{
		page:      page,
		cfg:       cfg,
		maxFrames: system.FrameBudget(frameSizeEstimate),
	}
}

// Start begins the screencast. Frames arrive on a background
// goroutine until Stop.
func (r *Screencast) Start(output string) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return fmt.Errorf("recorder already started")
	}
	r.started = true
	r.output = output
	r.mu.Unlock()

	ctx, cancel := context.WithCancel(r.page.GetContext())
	r.cancel = cancel
	pctx := r.page.Context(ctx)

	go pctx.EachEvent(func(e *proto.PageScreencastFrame) {
		// Ack right away or the browser stops sending frames.
		err := proto.PageScreencastFrameAck{SessionID: e.SessionID}.Call(pctx)
		if err != nil {
			return
		}

		ts := frameTimestamp(e)

		r.mu.Lock()
		if len(r.frames) < r.maxFrames {
			r.frames = append(r.frames, frame{data: e.Data, timestamp: ts})
		} else {
			r.dropped++
		}
		r.mu.Unlock()
	})()

	quality := r.cfg.CaptureQuality
	everyNth := 1
	err := proto.PageStartScreencast{
		Format:        proto.PageStartScreencastFormatJpeg,
		Quality:       &quality,
		EveryNthFrame: &everyNth,
	}.Call(r.page)
	if err != nil {
		cancel()
		return fmt.Errorf("start screencast: %w", err)
	}
	return nil
}

// Stop ends the screencast and writes the video. Second and later
// calls are no-ops.
func (r *Screencast) Stop() error {
	r.mu.Lock()
	if !r.started || r.stopped {
		r.mu.Unlock()
		return nil
	}
	r.stopped = true
	frames := r.frames
	dropped := r.dropped
	r.mu.Unlock()

	// The browser only emits frames when the page repaints; remember
	// when recording stopped so the last frame can fill the gap.
	end := time.Now()

	stopErr := proto.PageStopScreencast{}.Call(r.page)
	r.cancel()

	if dropped > 0 {
		log.Printf("[!] dropped %d frames over memory budget", dropped)
	}
	if len(frames) == 0 {
		if stopErr != nil {
			return fmt.Errorf("stop screencast: %w", stopErr)
		}
		return fmt.Errorf("no frames captured")
	}
	if stopErr != nil {
		log.Printf("[!] stop screencast: %v", stopErr)
	}

	if dir := filepath.Dir(r.output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	if err := r.writeVideo(frames, end); err != nil {
		return fmt.Errorf("write video: %w", err)
	}
	return nil
}

func (r *Screencast) writeVideo(frames []frame, end time.Time) error {
	sort.Slice(frames, func(i, j int) bool {
		return frames[i].timestamp.Before(frames[j].timestamp)
	})

	normalized, err := r.normalizeFrames(frames)
	if err != nil {
		return err
	}
	counts := paceFrames(frames, end, r.cfg.FPS)

	aviPath := filepath.Join(os.TempDir(), fmt.Sprintf("pagecast_%d.avi", time.Now().UnixNano()))
	defer os.Remove(aviPath)

	aw, err := mjpeg.New(aviPath, int32(r.cfg.Width), int32(r.cfg.Height), int32(r.cfg.FPS))
	if err != nil {
		return err
	}
	for i, data := range normalized {
		for n := 0; n < counts[i]; n++ {
			if err := aw.AddFrame(data); err != nil {
				aw.Close()
				return err
			}
		}
	}
	if err := aw.Close(); err != nil {
		return err
	}

	return transcode(context.Background(), aviPath, r.output, r.cfg)
}

// frameTimestamp prefers the browser's frame-swap time; frames
// without metadata fall back to arrival time.
func frameTimestamp(e *proto.PageScreencastFrame) time.Time {
	if e.Metadata != nil {
		return e.Metadata.Timestamp.Time()
	}
	return time.Now()
}

// paceFrames converts irregular frame timestamps into repeat counts
// at a fixed frame rate. The fractional remainder carries over so the
// total frame count stays aligned with wall time.
func paceFrames(frames []frame, end time.Time, fps int) []int {
	counts := make([]int, len(frames))
	carry := 0.0

	for i := range frames {
		next := end
		if i < len(frames)-1 {
			next = frames[i+1].timestamp
		}
		dur := next.Sub(frames[i].timestamp).Seconds()
		if dur < 0 {
			dur = 0
		}

		n := dur*float64(fps) + carry
		counts[i] = int(n)
		carry = n - float64(counts[i])
	}

	// Always emit the final frame.
	if len(counts) > 0 && counts[len(counts)-1] == 0 {
		counts[len(counts)-1] = 1
	}
	return counts
}

// normalizeFrames rescales any frame whose dimensions differ from the
// configured frame size; screencast frames can arrive at the device
// pixel ratio rather than the viewport size.
func (r *Screencast) normalizeFrames(frames []frame) ([][]byte, error) {
	out := make([][]byte, len(frames))

	workers := r.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i := range frames {
		i := i
		g.Go(func() error {
			data, err := r.normalizeFrame(frames[i].data)
			if err != nil {
				return err
			}
			out[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Screencast) normalizeFrame(data []byte) ([]byte, error) {
	dims, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if dims.Width == r.cfg.Width && dims.Height == r.cfg.Height {
		return data, nil
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, r.cfg.Width, r.cfg.Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: r.cfg.CaptureQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
