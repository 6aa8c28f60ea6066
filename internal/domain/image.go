package domain

import "context"

// ImageSpec describes how an uploaded image is normalized before storage.
// Crop scales and center-crops to exactly Width x Height; otherwise the
// image is scaled to fit inside the bounds, preserving aspect ratio.
type ImageSpec struct {
	Width   int
	Height  int
	Crop    bool
	Quality int
}

// Normalization targets. Banner is used for event banners, Square for post
// images and avatars.
var (
	BannerImageSpec = ImageSpec{Width: 1200, Height: 800, Crop: true, Quality: 80}
	SquareImageSpec = ImageSpec{Width: 800, Height: 800, Crop: false, Quality: 80}
)

// ImageProcessor re-encodes an uploaded image to the given spec (JPEG).
type ImageProcessor interface {
	Normalize(data []byte, spec ImageSpec) ([]byte, error)
}

// ImageStore uploads a normalized image to external object storage and
// returns its public HTTPS URL.
type ImageStore interface {
	Upload(ctx context.Context, data []byte, contentType string) (url string, err error)
}
