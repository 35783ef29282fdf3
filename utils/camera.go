package utils

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"time"

	"github.com/Perceptus-Labs/perceptus-coach/analysis"
	"github.com/Perceptus-Labs/perceptus-coach/models"
	"go.uber.org/zap"
)

type CameraCapture struct {
	DeviceID int
}

func NewCameraCapture(deviceID int) *CameraCapture {
	return &CameraCapture{
		DeviceID: deviceID,
	}
}

// snapshotArgs returns the ffmpeg arguments that grab one JPEG frame from
// the device on the given OS.
func snapshotArgs(goos string, deviceID int) ([]string, error) {
	var input []string
	switch goos {
	case "darwin":
		input = []string{"-f", "avfoundation", "-framerate", "30", "-i", strconv.Itoa(deviceID)}
	case "linux":
		input = []string{"-f", "v4l2", "-i", fmt.Sprintf("/dev/video%d", deviceID)}
	case "windows":
		input = []string{"-f", "dshow", "-i", "video=USB Camera"}
	default:
		return nil, fmt.Errorf("unsupported operating system: %s", goos)
	}

	args := append([]string{"-loglevel", "error", "-video_size", "640x480"}, input...)
	return append(args, "-vframes", "1", "-f", "image2pipe", "-vcodec", "mjpeg", "-q:v", "2", "-"), nil
}

// CaptureImage grabs a single JPEG frame with ffmpeg.
func (c *CameraCapture) CaptureImage(ctx context.Context) ([]byte, error) {
	args, err := snapshotArgs(runtime.GOOS, c.DeviceID)
	if err != nil {
		return nil, err
	}

	output, err := exec.CommandContext(ctx, "ffmpeg", args...).Output()
	if err != nil {
		zap.L().Error("Failed to capture image from camera", zap.Error(err))
		return nil, fmt.Errorf("failed to capture image: %w", err)
	}
	if len(output) == 0 {
		return nil, fmt.Errorf("no image data captured")
	}

	zap.L().Debug("Captured camera frame", zap.Int("size", len(output)))
	return output, nil
}

// Alternative method using imagesnap on macOS (if available)
func (c *CameraCapture) CaptureImageMacOS(ctx context.Context) ([]byte, error) {
	if runtime.GOOS != "darwin" {
		return nil, fmt.Errorf("imagesnap is only available on macOS")
	}

	cmd := exec.CommandContext(ctx, "imagesnap", "-d", strconv.Itoa(c.DeviceID), "-f", "jpeg", "-")
	output, err := cmd.Output()
	if err != nil {
		zap.L().Error("Failed to capture image using imagesnap", zap.Error(err))
		return nil, fmt.Errorf("failed to capture image with imagesnap: %w", err)
	}

	if len(output) == 0 {
		return nil, fmt.Errorf("no image data captured")
	}

	return output, nil
}

// TryCapture attempts to capture an image using the best available method
func (c *CameraCapture) TryCapture(ctx context.Context) ([]byte, error) {
	data, err := c.CaptureImage(ctx)
	if err == nil {
		return data, nil
	}

	zap.L().Warn("Primary capture method failed, trying alternatives", zap.Error(err))

	if runtime.GOOS == "darwin" {
		data, err := c.CaptureImageMacOS(ctx)
		if err == nil {
			return data, nil
		}
		zap.L().Warn("Alternative capture method also failed", zap.Error(err))
	}

	return nil, fmt.Errorf("all capture methods failed")
}

// CameraSource is a live frame source fed by repeated camera snapshots.
type CameraSource struct {
	*analysis.LatestFrameSource
	camera   *CameraCapture
	interval time.Duration
}

func NewCameraSource(camera *CameraCapture, interval time.Duration) *CameraSource {
	return &CameraSource{
		LatestFrameSource: analysis.NewLatestFrameSource(),
		camera:            camera,
		interval:          interval,
	}
}

// Run captures frames until ctx is done or duration has elapsed, then ends
// the source. If the first capture fails the source ends without ever
// becoming active.
func (s *CameraSource) Run(ctx context.Context, duration time.Duration) error {
	defer s.End()

	first, err := s.camera.TryCapture(ctx)
	if err != nil {
		return err
	}
	s.Publish(models.VideoFrame{Image: first})
	s.Play()

	deadline := time.NewTimer(duration)
	defer deadline.Stop()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-deadline.C:
			return nil
		case <-ticker.C:
			img, err := s.camera.TryCapture(ctx)
			if err != nil {
				zap.L().Warn("Camera snapshot failed", zap.Error(err))
				continue
			}
			s.Publish(models.VideoFrame{Image: img})
		}
	}
}
