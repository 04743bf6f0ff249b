package spotify

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // cover sources are often PNG

	"golang.org/x/image/draw"
)

// Spotify playlist cover constraints: JPEG, max 256 KB, 640px is plenty.
const (
	maxCoverBytes = 256 * 1024
	maxCoverEdge  = 640
)

// prepareCoverImage converts arbitrary image bytes into a JPEG under the
// upload cap, downscaling and lowering quality as needed.
func prepareCoverImage(data []byte) ([]byte, error) {
	if isJPEG(data) && len(data) <= maxCoverBytes {
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	img = downscale(img, maxCoverEdge)

	for quality := 85; quality >= 20; quality -= 10 {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
		if buf.Len() <= maxCoverBytes {
			return buf.Bytes(), nil
		}
	}
	return nil, fmt.Errorf("image does not fit under %d bytes", maxCoverBytes)
}

func isJPEG(data []byte) bool {
	return len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF
}

func downscale(img image.Image, maxEdge int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxEdge && h <= maxEdge {
		return img
	}

	scale := float64(maxEdge) / float64(max(w, h))
	dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
