package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
)

// InlineImage is an encoded image carried inside a JSON response.
type InlineImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// NewInlineImage encodes img in format f and base64-encodes the result.
func NewInlineImage(img image.Image, f Format, quality float64) (*InlineImage, error) {
	enc, err := EncoderFor(f)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := enc.Encode(&buf, img, quality); err != nil {
		return nil, &EncodeError{Format: f, Err: fmt.Errorf("failed to encode inline image: %w", err)}
	}

	b := img.Bounds()
	return &InlineImage{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    f.MIMEType(),
	}, nil
}
