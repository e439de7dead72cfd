package recorder

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/ivlev/pagecast/internal/config"
)

// transcode converts the intermediate AVI into the final MP4 with the
// configured encoder settings.
func transcode(ctx context.Context, aviPath, outPath string, cfg *config.Config) error {
	args := buildFFmpegArgs(aviPath, outPath, cfg)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg error: %v, output: %s", err, string(out))
	}
	return nil
}

func buildFFmpegArgs(aviPath, outPath string, cfg *config.Config) []string {
	args := []string{
		"-y",
		"-i", aviPath,
		"-r", fmt.Sprintf("%d", cfg.FPS),
		"-aspect", cfg.AspectRatio,
		"-pix_fmt", "yuv420p",
		"-c:v", cfg.Codec,
	}

	// Quality knob depends on the encoder
	switch cfg.Codec {
	case "h264_videotoolbox":
		bitrate := cfg.Quality * 100
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", cfg.Quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", cfg.Quality), "-preset", cfg.Preset)
	}

	if cfg.Bitrate > 0 {
		args = append(args,
			"-maxrate", fmt.Sprintf("%dk", cfg.Bitrate),
			"-bufsize", fmt.Sprintf("%dk", cfg.Bitrate*2),
		)
	}

	args = append(args, outPath)
	return args
}
