package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

const (
	defaultDetectorURL   = "http://localhost:7100"
	defaultDetectorModel = "fast" // HOG-based detection, the accurate model is much slower
)

// Detector finds faces and their embeddings in an image.
type Detector interface {
	DetectFaces(ctx context.Context, imageData []byte) ([]Face, error)
}

// DetectorClient talks to the face detection model server.
type DetectorClient struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewDetectorClient creates a detector client for the given server URL.
func NewDetectorClient(baseURL, model string) *DetectorClient {
	if baseURL == "" {
		baseURL = defaultDetectorURL
	}
	if model == "" {
		model = defaultDetectorModel
	}
	return &DetectorClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{},
	}
}

// faceDetection represents a single detected face on the wire.
type faceDetection struct {
	FaceIndex int       `json:"face_index"`
	Top       int       `json:"top"`
	Right     int       `json:"right"`
	Bottom    int       `json:"bottom"`
	Left      int       `json:"left"`
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
}

// detectResponse represents the response from the detection endpoint.
type detectResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []faceDetection `json:"faces"`
	Model      string          `json:"model"`
}

// DetectFaces posts the image to the model server and returns every
// detected face with its embedding, in the server's detection order.
func (c *DetectorClient) DetectFaces(ctx context.Context, imageData []byte) ([]Face, error) {
	body, err := postMultipartImage(ctx, c.client, c.baseURL+"/detect", imageData, map[string]string{
		"model": c.model,
	})
	if err != nil {
		return nil, err
	}

	var resp detectResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse detection response: %w", err)
	}

	faces := make([]Face, 0, len(resp.Faces))
	for _, f := range resp.Faces {
		faces = append(faces, Face{
			Region: FaceRegion{
				Top:    f.Top,
				Right:  f.Right,
				Bottom: f.Bottom,
				Left:   f.Left,
			},
			Embedding: f.Embedding,
		})
	}

	return faces, nil
}

// Model returns the detection model name being used.
func (c *DetectorClient) Model() string {
	return c.model
}

// postMultipartImage constructs a multipart form with the image data plus
// any extra fields and posts it to the given URL. The image part carries an
// explicit Content-Type header based on magic byte detection.
func postMultipartImage(ctx context.Context, client *http.Client, url string, imageData []byte, fields map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image.png"`)
	h.Set("Content-Type", DetectMIMEType(imageData))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// DetectMIMEType detects the MIME type from image data.
func DetectMIMEType(data []byte) string {
	if len(data) < 8 {
		return "application/octet-stream"
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	// GIF: 47 49 46 38
	if data[0] == 0x47 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x38 {
		return "image/gif"
	}
	// WebP: 52 49 46 46 ... 57 45 42 50
	if len(data) >= 12 && data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46 &&
		data[8] == 0x57 && data[9] == 0x45 && data[10] == 0x42 && data[11] == 0x50 {
		return "image/webp"
	}
	return "application/octet-stream"
}
