package system

import (
	"log"
	"os/exec"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v3/mem"
)

// InitResourceLimits raises the open-file soft limit (macOS/Linux).
// Chromium plus ffmpeg can exhaust the default on macOS.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] failed to read open-file limit: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] failed to raise open-file limit: %v", err)
	}
}

// BestH264Encoder picks the fastest H.264 encoder ffmpeg offers.
// Priorities:
// 1. macOS (VideoToolbox)
// 2. NVIDIA (NVENC)
// 3. Software (libx264)
func BestH264Encoder() string {
	out, err := exec.Command("ffmpeg", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}

	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(string(out), name) {
			return name
		}
	}

	return "libx264"
}

const (
	maxBufferedFrames = 20000
	minBufferedFrames = 300
)

// FrameBudget caps how many screencast frames may sit in memory,
// spending at most half of the currently available RAM.
func FrameBudget(frameSizeEstimate uint64) int {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return maxBufferedFrames
	}
	return frameBudget(vm.Available, frameSizeEstimate)
}

func frameBudget(available, frameSizeEstimate uint64) int {
	if frameSizeEstimate == 0 {
		return maxBufferedFrames
	}
	budget := available / 2 / frameSizeEstimate
	if budget > maxBufferedFrames {
		return maxBufferedFrames
	}
	if budget < minBufferedFrames {
		return minBufferedFrames
	}
	return int(budget)
}
