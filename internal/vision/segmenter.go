package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strconv"
	"strings"
)

const (
	defaultSegmenterURL        = "http://localhost:7200"
	defaultSegmenterConcurrent = 4

	// Alpha matting parameters for high-quality cutouts. Matting refines
	// the mask boundary around hair and clothing at a heavy compute cost,
	// so it is only requested for the cutout flow.
	alphaMattingForegroundThreshold = 240
	alphaMattingBackgroundThreshold = 10
	alphaMattingErodeSize           = 10
)

// SegmentOptions select how the segmentation service renders its result.
type SegmentOptions struct {
	// OnlyMask asks for a single-channel person mask instead of an RGBA cutout.
	OnlyMask bool
	// AlphaMatting enables boundary refinement for high-quality cutouts.
	AlphaMatting bool
}

// Segmenter separates a person from the background of an image crop.
type Segmenter interface {
	// RemoveBackground returns the segmented crop. The service normally
	// responds with an RGBA image whose alpha channel is the person mask;
	// with OnlyMask set it responds with a grayscale mask.
	RemoveBackground(ctx context.Context, imageData []byte, opts SegmentOptions) (image.Image, error)
}

// SegmenterClient talks to the background removal model server. Concurrent
// requests are capped because each one pins a full model inference.
type SegmenterClient struct {
	baseURL string
	client  *http.Client
	sem     chan struct{}
}

// NewSegmenterClient creates a segmenter client for the given server URL.
func NewSegmenterClient(baseURL string, maxConcurrent int) *SegmenterClient {
	if baseURL == "" {
		baseURL = defaultSegmenterURL
	}
	if maxConcurrent <= 0 {
		maxConcurrent = defaultSegmenterConcurrent
	}
	return &SegmenterClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{},
		sem:     make(chan struct{}, maxConcurrent),
	}
}

// RemoveBackground posts the crop to the model server and decodes the
// returned image.
func (c *SegmenterClient) RemoveBackground(ctx context.Context, imageData []byte, opts SegmentOptions) (image.Image, error) {
	fields := map[string]string{}
	if opts.OnlyMask {
		fields["only_mask"] = "true"
	}
	if opts.AlphaMatting {
		fields["alpha_matting"] = "true"
		fields["alpha_matting_foreground_threshold"] = strconv.Itoa(alphaMattingForegroundThreshold)
		fields["alpha_matting_background_threshold"] = strconv.Itoa(alphaMattingBackgroundThreshold)
		fields["alpha_matting_erode_size"] = strconv.Itoa(alphaMattingErodeSize)
	}

	c.sem <- struct{}{}
	body, err := postMultipartImage(ctx, c.client, c.baseURL+"/segment", imageData, fields)
	<-c.sem
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to decode segmentation result: %w", err)
	}

	return img, nil
}
