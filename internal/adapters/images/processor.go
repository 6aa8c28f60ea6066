package images

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"

	"xvent/internal/domain"
)

type processor struct{}

// NewProcessor returns an ImageProcessor that decodes common raster formats
// and re-encodes to JPEG at the spec's dimensions: center-crop fill when
// Crop is set, fit-inside otherwise.
func NewProcessor() domain.ImageProcessor {
	return &processor{}
}

func (p *processor) Normalize(data []byte, spec domain.ImageSpec) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: not a valid image", domain.ErrInvalidInput)
	}
	if spec.Crop {
		img = imaging.Fill(img, spec.Width, spec.Height, imaging.Center, imaging.Lanczos)
	} else {
		img = imaging.Fit(img, spec.Width, spec.Height, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(spec.Quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
