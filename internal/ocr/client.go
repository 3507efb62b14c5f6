package ocr

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/stationhop/backend-go/internal/models"
	"github.com/stationhop/backend-go/pkg/http/client"
)

// UnavailableError surfaces before the pipeline's Intake stage: the
// recognition collaborator could not produce a result at all, which is
// different from it producing a "nothing detected" result.
type UnavailableError struct {
	Message string
	Err     error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("OCR unavailable: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("OCR unavailable: %s", e.Message)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Client calls the image-recognition collaborator. The service itself is a
// black box; this boundary only shapes its answer into a validated OCRResult.
type Client struct {
	httpClient client.Interface
}

func NewClient(httpClient client.Interface) *Client {
	return &Client{httpClient: httpClient}
}

type recognizeRequest struct {
	ImageRef string `json:"imageRef"`
}

// Recognize asks the collaborator for the text found in a previously
// uploaded image.
func (c *Client) Recognize(ctx context.Context, imageRef string) (*models.OCRResult, error) {
	if imageRef == "" {
		return nil, fmt.Errorf("empty image reference")
	}

	payload, err := json.Marshal(recognizeRequest{ImageRef: imageRef})
	if err != nil {
		return nil, fmt.Errorf("marshaling recognize request: %w", err)
	}

	resp, err := c.httpClient.PostJSON(ctx, "/v1/recognize", payload)
	if err != nil {
		return nil, &UnavailableError{Message: "calling recognition service", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UnavailableError{
			Message: fmt.Sprintf("recognition service returned status %d", resp.StatusCode),
		}
	}

	var result models.OCRResult
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, &UnavailableError{Message: "decoding recognition response", Err: err}
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("rejecting malformed OCR payload: %w", err)
	}

	log.Debug().
		Str("image_ref", imageRef).
		Bool("detected", result.Detected).
		Float64("confidence", result.Confidence).
		Msg("OCR result received")

	return &result, nil
}
