package osmfusion

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
)

type AlignMethod string

const (
	ALIGN_ICP     = AlignMethod("ICP")
	ALIGN_UMEYAMA = AlignMethod("Umeyama")
)

const (
	// DefaultAlignSamples is number of points both polylines are interpolated to for Umeyama method
	DefaultAlignSamples = 100
	// DefaultMaxIterations limits ICP
	DefaultMaxIterations = 50
	// DefaultAlignEpsilon is ICP convergence threshold for change of mean squared error
	DefaultAlignEpsilon = 1e-8
	// scaleThreshold is max allowed deviation of estimated scale from 1
	scaleThreshold = 0.05
)

// Transform2D is a homogeneous 2D transformation (3x3 matrix)
type Transform2D struct {
	m *mat.Dense
}

// IdentityTransform returns transformation which keeps points unchanged
func IdentityTransform() Transform2D {
	return Transform2D{m: mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})}
}

// NewTransform2D builds transformation from rotation angle (radians), translation and scale
func NewTransform2D(angle, tx, ty, scale float64) Transform2D {
	sin, cos := math.Sincos(angle)
	return Transform2D{m: mat.NewDense(3, 3, []float64{
		scale * cos, -scale * sin, tx,
		scale * sin, scale * cos, ty,
		0, 0, 1,
	})}
}

// At returns matrix element
func (t Transform2D) At(i, j int) float64 {
	return t.m.At(i, j)
}

// Apply transforms X and Y of the coordinate. Z is kept
func (t Transform2D) Apply(c Coord) Coord {
	return Coord{
		X: t.m.At(0, 0)*c.X + t.m.At(0, 1)*c.Y + t.m.At(0, 2),
		Y: t.m.At(1, 0)*c.X + t.m.At(1, 1)*c.Y + t.m.At(1, 2),
		Z: c.Z,
	}
}

// Compose returns transformation which applies t first and then next
func (t Transform2D) Compose(next Transform2D) Transform2D {
	res := mat.NewDense(3, 3, nil)
	res.Mul(next.m, t.m)
	return Transform2D{m: res}
}

// Inverse returns inverted transformation
func (t Transform2D) Inverse() (Transform2D, error) {
	inv := mat.NewDense(3, 3, nil)
	err := inv.Inverse(t.m)
	if err != nil {
		return Transform2D{}, errors.Wrap(err, "Can't invert transformation")
	}
	return Transform2D{m: inv}, nil
}

func (t Transform2D) String() string {
	return fmt.Sprintf("%v", mat.Formatted(t.m, mat.Squeeze()))
}

// Alignment is an estimated transformation of source polyline onto destination polyline
type Alignment struct {
	Method    AlignMethod
	Transform Transform2D
	// Scale is estimated scale factor between polylines. Transform itself is rigid
	Scale float64
	// ScaleWarning is set when scale deviates from 1 too much: polylines probably do not belong together
	ScaleWarning bool
	Converged    bool
	Iterations   int
}

// Aligner estimates rigid transformation between two polylines
type Aligner struct {
	geom          GeometryPort
	logger        zerolog.Logger
	samples       int
	maxIterations int
	epsilon       float64
}

// NewAligner returns aligner with default parameters
func NewAligner(options ...func(*Aligner)) *Aligner {
	aligner := &Aligner{
		geom:          PlanarGeometry{},
		logger:        zerolog.Nop(),
		samples:       DefaultAlignSamples,
		maxIterations: DefaultMaxIterations,
		epsilon:       DefaultAlignEpsilon,
	}
	for _, option := range options {
		option(aligner)
	}
	return aligner
}

func WithAlignGeometry(geom GeometryPort) func(*Aligner) {
	return func(aligner *Aligner) {
		aligner.geom = geom
	}
}

func WithAlignLogger(logger zerolog.Logger) func(*Aligner) {
	return func(aligner *Aligner) {
		aligner.logger = logger
	}
}

// WithSamples sets number of interpolated points for Umeyama method
func WithSamples(samples int) func(*Aligner) {
	return func(aligner *Aligner) {
		aligner.samples = samples
	}
}

// WithMaxIterations sets ICP iterations limit
func WithMaxIterations(maxIterations int) func(*Aligner) {
	return func(aligner *Aligner) {
		aligner.maxIterations = maxIterations
	}
}

// Align estimates transformation of src polyline onto dst polyline by given method.
// Use TransformMap with the result to move map digitized along dst onto src
func (aligner *Aligner) Align(method AlignMethod, src, dst *Curve) (*Alignment, error) {
	if src.Len() < 2 || dst.Len() < 2 {
		return nil, fmt.Errorf("polylines must have at least 2 points, got %d and %d", src.Len(), dst.Len())
	}
	var alignment *Alignment
	var err error
	switch method {
	case ALIGN_ICP:
		alignment, err = aligner.icp(src, dst)
	case ALIGN_UMEYAMA:
		alignment, err = aligner.umeyama(src, dst)
	default:
		return nil, &UnsupportedMethodError{Method: string(method)}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "Can't align polylines by '%s'", method)
	}
	alignment.Method = method
	if alignment.ScaleWarning {
		aligner.logger.Warn().Float64("scale", alignment.Scale).Msg("High scaling factor between polylines. Are you sure they belong together?")
	}
	if !alignment.Converged {
		aligner.logger.Warn().Int("iterations", alignment.Iterations).Msg("Alignment has not converged")
	}
	return alignment, nil
}

func (aligner *Aligner) umeyama(src, dst *Curve) (*Alignment, error) {
	if aligner.samples < 2 {
		return nil, fmt.Errorf("number of samples must be at least 2, got %d", aligner.samples)
	}
	transform, scale, err := umeyamaFit(aligner.resample(src, aligner.samples), aligner.resample(dst, aligner.samples), false)
	if err != nil {
		return nil, err
	}
	return &Alignment{
		Transform:    transform,
		Scale:        scale,
		ScaleWarning: math.Abs(scale-1) > scaleThreshold,
		Converged:    true,
		Iterations:   1,
	}, nil
}

// resample returns equally spaced points along the curve
func (aligner *Aligner) resample(curve *Curve, samples int) []Coord {
	length := aligner.geom.Length(curve)
	pts := make([]Coord, samples)
	for i := range pts {
		pts[i] = aligner.geom.InterpolateAtDistance(curve, length*float64(i)/float64(samples-1))
	}
	return pts
}

// icp refines rigid transformation by nearest vertex correspondences.
// Those correspondences can't observe scale, so it is estimated once on equally spaced points of both polylines
func (aligner *Aligner) icp(srcCurve, dstCurve *Curve) (*Alignment, error) {
	src, dst := srcCurve.Coords(), dstCurve.Coords()
	total := IdentityTransform()
	current := make([]Coord, len(src))
	copy(current, src)
	prevErr := math.Inf(1)
	alignment := &Alignment{}
	for iter := 1; iter <= aligner.maxIterations; iter++ {
		alignment.Iterations = iter
		pairs := make([]Coord, len(current))
		sqErr := 0.0
		for i, c := range current {
			nearest, d := nearestCoord(c, dst)
			pairs[i] = nearest
			sqErr += d * d
		}
		sqErr /= float64(len(current))
		step, _, err := umeyamaFit(current, pairs, false)
		if err != nil {
			return nil, err
		}
		total = total.Compose(step)
		for i := range current {
			current[i] = step.Apply(current[i])
		}
		if math.Abs(prevErr-sqErr) < aligner.epsilon {
			alignment.Converged = true
			break
		}
		prevErr = sqErr
	}
	samples := aligner.samples
	if samples < 2 {
		samples = DefaultAlignSamples
	}
	_, scale, err := umeyamaFit(aligner.resample(srcCurve, samples), aligner.resample(dstCurve, samples), false)
	if err != nil {
		return nil, err
	}
	alignment.Transform = total
	alignment.Scale = scale
	alignment.ScaleWarning = math.Abs(scale-1) > scaleThreshold
	return alignment, nil
}

func nearestCoord(c Coord, candidates []Coord) (Coord, float64) {
	best := candidates[0]
	bestDist := math.Inf(1)
	for _, cand := range candidates {
		d := math.Hypot(cand.X-c.X, cand.Y-c.Y)
		if d < bestDist {
			bestDist = d
			best = cand
		}
	}
	return best, bestDist
}

// umeyamaFit returns least-squares transformation of src onto dst (Umeyama, 1991) and estimated scale.
// If withScale is false returned transformation is rigid, but scale is estimated anyway
func umeyamaFit(src, dst []Coord, withScale bool) (Transform2D, float64, error) {
	n := len(src)
	if n == 0 || n != len(dst) {
		return Transform2D{}, 0, fmt.Errorf("point sets must be non-empty and of the same size, got %d and %d", len(src), len(dst))
	}
	var muSrcX, muSrcY, muDstX, muDstY float64
	for i := 0; i < n; i++ {
		muSrcX += src[i].X
		muSrcY += src[i].Y
		muDstX += dst[i].X
		muDstY += dst[i].Y
	}
	muSrcX /= float64(n)
	muSrcY /= float64(n)
	muDstX /= float64(n)
	muDstY /= float64(n)

	// Cross-covariance of centered sets and variance of source set
	sigma := mat.NewDense(2, 2, nil)
	varSrc := 0.0
	for i := 0; i < n; i++ {
		sx, sy := src[i].X-muSrcX, src[i].Y-muSrcY
		dx, dy := dst[i].X-muDstX, dst[i].Y-muDstY
		sigma.Set(0, 0, sigma.At(0, 0)+dx*sx)
		sigma.Set(0, 1, sigma.At(0, 1)+dx*sy)
		sigma.Set(1, 0, sigma.At(1, 0)+dy*sx)
		sigma.Set(1, 1, sigma.At(1, 1)+dy*sy)
		varSrc += sx*sx + sy*sy
	}
	sigma.Scale(1/float64(n), sigma)
	varSrc /= float64(n)

	var svd mat.SVD
	if ok := svd.Factorize(sigma, mat.SVDFull); !ok {
		return Transform2D{}, 0, fmt.Errorf("SVD factorization failed")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	values := svd.Values(nil)

	// Reflection guard
	s := mat.NewDiagDense(2, []float64{1, 1})
	if mat.Det(&u)*mat.Det(&v) < 0 {
		s.SetDiag(1, -1)
	}
	var us, rot mat.Dense
	us.Mul(&u, s)
	rot.Mul(&us, v.T())

	scale := 1.0
	if varSrc > 0 {
		scale = (values[0]*s.At(0, 0) + values[1]*s.At(1, 1)) / varSrc
	}
	c := 1.0
	if withScale {
		c = scale
	}
	tx := muDstX - c*(rot.At(0, 0)*muSrcX+rot.At(0, 1)*muSrcY)
	ty := muDstY - c*(rot.At(1, 0)*muSrcX+rot.At(1, 1)*muSrcY)
	return Transform2D{m: mat.NewDense(3, 3, []float64{
		c * rot.At(0, 0), c * rot.At(0, 1), tx,
		c * rot.At(1, 0), c * rot.At(1, 1), ty,
		0, 0, 1,
	})}, scale, nil
}

// TransformMap moves every point of the map by inverse of the transformation (2D, z is kept)
func TransformMap(m *Map, t Transform2D) error {
	inv, err := t.Inverse()
	if err != nil {
		return err
	}
	for _, pt := range m.Points() {
		pt.Coord = inv.Apply(pt.Coord)
	}
	return nil
}

// TransformMatches moves reference segments of matches by inverse of the transformation, as TransformMap does for the map.
// Reference segments are digitized along the map, target polylines are left untouched
func TransformMatches(matches []*Match, t Transform2D) error {
	inv, err := t.Inverse()
	if err != nil {
		return err
	}
	for _, match := range matches {
		for _, seg := range match.Reference {
			if seg.Curve == nil {
				continue
			}
			for _, pt := range seg.Curve.Points {
				pt.Coord = inv.Apply(pt.Coord)
			}
		}
	}
	return nil
}

// TransformCurve returns copy of the curve moved by inverse of the transformation. Points keep their IDs
func TransformCurve(curve *Curve, t Transform2D) (*Curve, error) {
	inv, err := t.Inverse()
	if err != nil {
		return nil, err
	}
	pts := make([]*Point, len(curve.Points))
	for i, pt := range curve.Points {
		pts[i] = &Point{ID: pt.ID, Coord: inv.Apply(pt.Coord), Attributes: pt.Attributes.Clone()}
	}
	transformed := NewCurve(curve.ID, pts)
	transformed.Attributes = curve.Attributes.Clone()
	return transformed, nil
}
