package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ivlev/pagecast/internal/browser"
	"github.com/ivlev/pagecast/internal/config"
	"github.com/ivlev/pagecast/internal/director"
	"github.com/ivlev/pagecast/internal/recorder"
	"github.com/ivlev/pagecast/internal/system"
)

func main() {
	system.InitResourceLimits()

	outputPtr := flag.String("output", "output/demo.mp4", "Path to the output video")
	fpsPtr := flag.Int("fps", 30, "Frame rate")
	qualityPtr := flag.Int("quality", 18, "Video quality (x264: CRF 1-51, VideoToolbox: bitrate = Q*100 kbit/s)")
	codecPtr := flag.String("codec", "libx264", "Video encoder (auto = best available)")
	presetPtr := flag.String("preset", "ultrafast", "x264 preset")
	headlessPtr := flag.Bool("headless", true, "Run the browser headless")
	browserPtr := flag.String("browser", "", "Browser binary (default: autodetect)")
	planPtr := flag.String("plan", "", "Section plan YAML, or a directory of plans (latest wins; default: built-in sequence)")
	writePlanPtr := flag.String("write-plan", "", "Write the built-in section plan to a file and exit")
	workersPtr := flag.Int("workers", runtime.NumCPU(), "Frame processing workers")

	flag.Parse()

	if *writePlanPtr != "" {
		if err := director.WritePlan(director.DefaultPlan(), *writePlanPtr); err != nil {
			log.Fatalf("[-] Failed to write plan: %v", err)
		}
		fmt.Printf("[+] Plan written to %s\n", *writePlanPtr)
		return
	}

	cfg := config.New(flag.Arg(0))
	cfg.OutputVideo = *outputPtr
	cfg.FPS = *fpsPtr
	cfg.Quality = *qualityPtr
	cfg.Codec = *codecPtr
	cfg.Preset = *presetPtr
	cfg.Headless = *headlessPtr
	cfg.BrowserBin = *browserPtr
	cfg.Workers = *workersPtr

	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("[-] Bad environment: %v", err)
	}

	if cfg.Codec == "auto" {
		cfg.Codec = system.BestH264Encoder()
		if cfg.Codec != "libx264" {
			fmt.Printf("[*] Hardware encoder detected: %s\n", cfg.Codec)
		}
	}

	sections := director.DefaultSections()
	if *planPtr != "" {
		plan, err := director.ResolvePlan(*planPtr)
		if err != nil {
			log.Fatalf("[-] Failed to read plan: %v", err)
		}
		sections = plan.Runnable()
		fmt.Printf("[*] Using plan: %s\n", *planPtr)
	}

	if dir := filepath.Dir(cfg.OutputVideo); dir != "." {
		os.MkdirAll(dir, 0755)
	}

	ctrl, err := browser.Launch(cfg)
	if err != nil {
		log.Fatalf("[-] Browser error: %v", err)
	}

	rec := recorder.NewScreencast(ctrl.Page(), cfg)

	d := director.New(cfg, ctrl, rec, sections)
	if err := d.Run(); err != nil {
		log.Fatalf("[-] Capture failed: %v", err)
	}

	fmt.Printf("[+++] Done! Result: %s\n", cfg.OutputVideo)
}
