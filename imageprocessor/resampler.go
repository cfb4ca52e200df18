package imageprocessor

import (
	"fmt"
	"image"
	"sort"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

const (
	// DefaultResampler is the backend used when none is configured
	DefaultResampler = "imaging"
	// DefaultFilter is the resampling filter used when none is configured
	DefaultFilter = "catmullrom"
)

// Resampler reduces an image to a size×size grid and returns its luminance
// in raster order, one byte per pixel.
type Resampler interface {
	Luminance(img image.Image, size int) ([]uint8, error)
}

// ResamplerFactory builds a resampler for a named filter
type ResamplerFactory func(filter string) (Resampler, error)

var (
	resamplersMu sync.RWMutex
	resamplers   = map[string]ResamplerFactory{
		DefaultResampler: func(filter string) (Resampler, error) { return NewImagingResampler(filter) },
	}
)

// RegisterResampler makes a backend available under name
func RegisterResampler(name string, factory ResamplerFactory) {
	resamplersMu.Lock()
	defer resamplersMu.Unlock()
	resamplers[strings.ToLower(name)] = factory
}

// ResamplerBackends lists the registered backend names, sorted
func ResamplerBackends() []string {
	resamplersMu.RLock()
	defer resamplersMu.RUnlock()
	names := make([]string, 0, len(resamplers))
	for name := range resamplers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewResampler builds the named backend with the named filter. Empty names
// select the defaults.
func NewResampler(backend, filter string) (Resampler, error) {
	backend = strings.ToLower(strings.TrimSpace(backend))
	if backend == "" {
		backend = DefaultResampler
	}
	resamplersMu.RLock()
	factory, ok := resamplers[backend]
	resamplersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown resampler %q (available: %s)", backend, strings.Join(ResamplerBackends(), ", "))
	}
	return factory(filter)
}

var imagingFilters = map[string]imaging.ResampleFilter{
	"lanczos":    imaging.Lanczos,
	"catmullrom": imaging.CatmullRom,
	"linear":     imaging.Linear,
	"box":        imaging.Box,
	"nearest":    imaging.NearestNeighbor,
}

// FilterNames lists the filters accepted by the imaging resampler
func FilterNames() []string {
	names := make([]string, 0, len(imagingFilters))
	for name := range imagingFilters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ImagingResampler resizes with disintegration/imaging and converts to
// luminance with 0.299R + 0.587G + 0.114B.
type ImagingResampler struct {
	filter imaging.ResampleFilter
}

// NewImagingResampler returns a resampler for the named filter
func NewImagingResampler(filter string) (*ImagingResampler, error) {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		filter = DefaultFilter
	}
	f, ok := imagingFilters[filter]
	if !ok {
		return nil, fmt.Errorf("unknown resample filter %q (available: %s)", filter, strings.Join(FilterNames(), ", "))
	}
	return &ImagingResampler{filter: f}, nil
}

// Luminance implements Resampler
func (r *ImagingResampler) Luminance(img image.Image, size int) ([]uint8, error) {
	if size < 1 {
		return nil, fmt.Errorf("resample size %d must be positive", size)
	}
	gray := imaging.Grayscale(imaging.Resize(img, size, size, r.filter))
	if gray.Rect.Dx() != size || gray.Rect.Dy() != size {
		return nil, fmt.Errorf("resampled to %dx%d, want %dx%d", gray.Rect.Dx(), gray.Rect.Dy(), size, size)
	}

	out := make([]uint8, size*size)
	for y := 0; y < size; y++ {
		row := gray.Pix[y*gray.Stride:]
		for x := 0; x < size; x++ {
			out[y*size+x] = row[x*4]
		}
	}
	return out, nil
}
