// Package mask derives statistics about the painted region of a photo,
// reported alongside exports so downstream edit requests know where and
// how large the mask is.
package mask

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/mat"

	"mask-painter/pkg/geometry"
)

// Summary describes the painted region. Orientation is the angle of the
// region's principal axis in radians, in [-pi/2, pi/2]; it is zero when
// the region is empty or isotropic.
type Summary struct {
	PixelCount  int
	Coverage    float64 // painted fraction of the photo, 0..1
	Bounds      geometry.Rect
	Centroid    geometry.Point2D
	Orientation float64
}

// Empty reports whether nothing has been painted.
func (s Summary) Empty() bool {
	return s.PixelCount == 0
}

// Summarize compares the original photo against the painted raster and
// aggregates every differing pixel. Both images must share bounds.
func Summarize(base, painted *image.RGBA) (Summary, error) {
	if base == nil || painted == nil {
		return Summary{}, fmt.Errorf("mask: missing raster")
	}
	if base.Bounds() != painted.Bounds() {
		return Summary{}, fmt.Errorf("mask: bounds mismatch %v vs %v", base.Bounds(), painted.Bounds())
	}

	bounds := base.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	var (
		count                    int
		minX, minY               = math.MaxFloat64, math.MaxFloat64
		maxX, maxY               = -math.MaxFloat64, -math.MaxFloat64
		sumX, sumY               float64
		sumXX, sumYY, sumXY      float64
	)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if base.RGBAAt(bounds.Min.X+x, bounds.Min.Y+y) == painted.RGBAAt(bounds.Min.X+x, bounds.Min.Y+y) {
				continue
			}
			fx, fy := float64(x), float64(y)
			count++
			sumX += fx
			sumY += fy
			sumXX += fx * fx
			sumYY += fy * fy
			sumXY += fx * fy
			minX = math.Min(minX, fx)
			minY = math.Min(minY, fy)
			maxX = math.Max(maxX, fx)
			maxY = math.Max(maxY, fy)
		}
	}

	if count == 0 {
		return Summary{}, nil
	}

	n := float64(count)
	s := Summary{
		PixelCount: count,
		Coverage:   n / float64(w*h),
		Bounds:     geometry.NewRect(minX, minY, maxX-minX+1, maxY-minY+1),
		Centroid:   geometry.NewPoint2D(sumX/n, sumY/n),
	}
	s.Orientation = principalAxis(
		sumXX/n-s.Centroid.X*s.Centroid.X,
		sumYY/n-s.Centroid.Y*s.Centroid.Y,
		sumXY/n-s.Centroid.X*s.Centroid.Y,
	)
	return s, nil
}

// principalAxis returns the angle of the dominant eigenvector of the
// 2x2 pixel covariance matrix.
func principalAxis(covXX, covYY, covXY float64) float64 {
	if math.Abs(covXX-covYY) < 1e-12 && math.Abs(covXY) < 1e-12 {
		return 0 // isotropic, no meaningful axis
	}

	cov := mat.NewSymDense(2, []float64{covXX, covXY, covXY, covYY})
	var eig mat.EigenSym
	if !eig.Factorize(cov, true) {
		return 0
	}

	// Eigenvalues come back in ascending order; the principal axis is
	// the eigenvector of the largest.
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	angle := math.Atan2(vecs.At(1, 1), vecs.At(0, 1))

	// Fold into [-pi/2, pi/2]; an axis has no direction.
	if angle > math.Pi/2 {
		angle -= math.Pi
	} else if angle < -math.Pi/2 {
		angle += math.Pi
	}
	return angle
}
