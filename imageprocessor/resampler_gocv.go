//go:build gocv

package imageprocessor

import (
	"fmt"
	"image"
	"strings"

	"gocv.io/x/gocv"
)

func init() {
	RegisterResampler("opencv", func(filter string) (Resampler, error) { return NewOpenCVResampler(filter) })
}

var opencvInterpolations = map[string]gocv.InterpolationFlags{
	"area":       gocv.InterpolationArea,
	"box":        gocv.InterpolationArea,
	"linear":     gocv.InterpolationLinear,
	"catmullrom": gocv.InterpolationCubic,
	"lanczos":    gocv.InterpolationLanczos4,
	"nearest":    gocv.InterpolationNearestNeighbor,
}

// OpenCVResampler resizes and converts to gray through OpenCV
type OpenCVResampler struct {
	interpolation gocv.InterpolationFlags
}

// NewOpenCVResampler maps a filter name onto an OpenCV interpolation mode.
// An empty name selects area interpolation.
func NewOpenCVResampler(filter string) (*OpenCVResampler, error) {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		filter = "area"
	}
	interp, ok := opencvInterpolations[filter]
	if !ok {
		return nil, fmt.Errorf("unknown opencv interpolation %q", filter)
	}
	return &OpenCVResampler{interpolation: interp}, nil
}

// Luminance implements Resampler
func (r *OpenCVResampler) Luminance(img image.Image, size int) ([]uint8, error) {
	if size < 1 {
		return nil, fmt.Errorf("resample size %d must be positive", size)
	}

	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert to mat: %w", err)
	}
	defer src.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(src, &resized, image.Point{X: size, Y: size}, 0, 0, r.interpolation)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(resized, &gray, gocv.ColorBGRToGray)
	if gray.Rows() != size || gray.Cols() != size {
		return nil, fmt.Errorf("resampled to %dx%d, want %dx%d", gray.Cols(), gray.Rows(), size, size)
	}

	out := make([]uint8, 0, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			out = append(out, gray.GetUCharAt(y, x))
		}
	}
	return out, nil
}
