package perimeter

import (
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/paulmach/orb"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
)

// nrgbaToRGBA converts color.NRGBA to color.RGBA by premultiplying alpha,
// which the canvas library expects.
func nrgbaToRGBA(c color.NRGBA) color.RGBA {
	if c.A == 0 {
		return color.RGBA{0, 0, 0, 0}
	}
	if c.A == 255 {
		return color.RGBA{c.R, c.G, c.B, 255}
	}
	alpha32 := uint32(c.A)
	return color.RGBA{
		R: uint8((uint32(c.R) * alpha32) / 255),
		G: uint8((uint32(c.G) * alpha32) / 255),
		B: uint8((uint32(c.B) * alpha32) / 255),
		A: c.A,
	}
}

// SnapshotRenderer draws a result as a static vector image: graticule grid,
// red hull outline with translucent fill, turbine and sample dots, and a
// centroid cross. It is the offline counterpart of the interactive map.
type SnapshotRenderer struct {
	Size       float64           // longest canvas side in mm
	Padding    float64           // padding in mm around the drawing
	Resolution canvas.Resolution // resolution for PNG output
	GridLines  int               // approximate graticule line count per axis

	res *Result
}

// NewSnapshotRenderer creates a snapshot renderer with default settings.
func NewSnapshotRenderer(res *Result) *SnapshotRenderer {
	return &SnapshotRenderer{
		Size:       180.0,
		Padding:    10.0,
		Resolution: canvas.DPI(300),
		GridLines:  6,
		res:        res,
	}
}

// canvasRenderer is the interface both the svg and rasterizer backends implement.
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

// RenderToSVG writes the snapshot as an SVG to the provided writer.
func (r *SnapshotRenderer) RenderToSVG(w io.Writer) error {
	minLon, minLat, scale, width, height := r.layout()

	svgRenderer := svg.New(w, width, height, nil)
	r.renderToCanvas(svgRenderer, minLon, minLat, scale, width, height)
	return svgRenderer.Close()
}

// RenderToPNG writes the snapshot as a PNG to the provided writer.
func (r *SnapshotRenderer) RenderToPNG(w io.Writer) error {
	minLon, minLat, scale, width, height := r.layout()

	rast := rasterizer.New(width, height, r.Resolution, canvas.DefaultColorSpace)
	r.renderToCanvas(rast, minLon, minLat, scale, width, height)
	return png.Encode(w, rast)
}

// layout fits the geographic extent into the canvas. Latitude increases
// upward, matching the canvas's bottom-left origin, so no flip is needed.
func (r *SnapshotRenderer) layout() (minLon, minLat, scale, width, height float64) {
	minLon, minLat = math.MaxFloat64, math.MaxFloat64
	maxLon, maxLat := -math.MaxFloat64, -math.MaxFloat64

	expand := func(p orb.Point) {
		minLon = math.Min(minLon, p[0])
		minLat = math.Min(minLat, p[1])
		maxLon = math.Max(maxLon, p[0])
		maxLat = math.Max(maxLat, p[1])
	}
	for _, p := range r.res.Hull {
		expand(p)
	}
	for _, f := range r.res.Turbines.Features {
		expand(f.Point)
	}
	expand(r.res.Centroid)

	extentLon := maxLon - minLon
	extentLat := maxLat - minLat
	if extentLon <= 0 {
		extentLon = 1e-6
	}
	if extentLat <= 0 {
		extentLat = 1e-6
	}

	scale = (r.Size - 2*r.Padding) / math.Max(extentLon, extentLat)
	width = extentLon*scale + 2*r.Padding
	height = extentLat*scale + 2*r.Padding
	return minLon, minLat, scale, width, height
}

func (r *SnapshotRenderer) renderToCanvas(renderer canvasRenderer, minLon, minLat, scale, width, height float64) {
	// White background
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(width, height), bgStyle, canvas.Identity)

	toCanvas := func(p orb.Point) (float64, float64) {
		return (p[0]-minLon)*scale + r.Padding, (p[1]-minLat)*scale + r.Padding
	}

	maxLon := minLon + (width-2*r.Padding)/scale
	maxLat := minLat + (height-2*r.Padding)/scale

	// Graticule
	if r.GridLines > 0 {
		gridStyle := canvas.DefaultStyle
		gridStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		gridStyle.Stroke = canvas.Paint{Color: canvas.Gray}
		gridStyle.StrokeWidth = 0.2
		gridStyle.Dashes = []float64{1.0, 1.0}

		step := niceStep(math.Max(maxLon-minLon, maxLat-minLat) / float64(r.GridLines))
		for lon := math.Ceil(minLon/step) * step; lon <= maxLon; lon += step {
			gridPath := &canvas.Path{}
			x1, y1 := toCanvas(orb.Point{lon, minLat})
			x2, y2 := toCanvas(orb.Point{lon, maxLat})
			gridPath.MoveTo(x1, y1)
			gridPath.LineTo(x2, y2)
			renderer.RenderPath(gridPath, gridStyle, canvas.Identity)
		}
		for lat := math.Ceil(minLat/step) * step; lat <= maxLat; lat += step {
			gridPath := &canvas.Path{}
			x1, y1 := toCanvas(orb.Point{minLon, lat})
			x2, y2 := toCanvas(orb.Point{maxLon, lat})
			gridPath.MoveTo(x1, y1)
			gridPath.LineTo(x2, y2)
			renderer.RenderPath(gridPath, gridStyle, canvas.Identity)
		}
	}

	// Hull: red outline, translucent fill
	if len(r.res.Hull) > 0 {
		hullStyle := canvas.DefaultStyle
		hullStyle.Fill = canvas.Paint{Color: nrgbaToRGBA(color.NRGBA{R: 255, A: 26})}
		hullStyle.Stroke = canvas.Paint{Color: nrgbaToRGBA(color.NRGBA{R: 255, A: 255})}
		hullStyle.StrokeWidth = 0.6

		hullPath := &canvas.Path{}
		for i, p := range r.res.Hull {
			cx, cy := toCanvas(p)
			if i == 0 {
				hullPath.MoveTo(cx, cy)
			} else {
				hullPath.LineTo(cx, cy)
			}
		}
		hullPath.Close()
		renderer.RenderPath(hullPath, hullStyle, canvas.Identity)
	}

	// Turbines
	turbineStyle := canvas.DefaultStyle
	turbineStyle.Fill = canvas.Paint{Color: canvas.Black}
	turbineStyle.Stroke = canvas.Paint{Color: canvas.Transparent}
	for _, f := range r.res.Turbines.Features {
		cx, cy := toCanvas(f.Point)
		dot := canvas.Circle(0.8)
		dot = dot.Translate(cx, cy)
		renderer.RenderPath(dot, turbineStyle, canvas.Identity)
	}

	// Sampled boundary points
	sampleStyle := canvas.DefaultStyle
	sampleStyle.Fill = canvas.Paint{Color: nrgbaToRGBA(color.NRGBA{B: 255, A: 255})}
	sampleStyle.Stroke = canvas.Paint{Color: canvas.White}
	sampleStyle.StrokeWidth = 0.2
	for _, s := range r.res.Samples {
		cx, cy := toCanvas(s.Point)
		dot := canvas.Circle(1.1)
		dot = dot.Translate(cx, cy)
		renderer.RenderPath(dot, sampleStyle, canvas.Identity)
	}

	// Centroid cross
	crossStyle := canvas.DefaultStyle
	crossStyle.Fill = canvas.Paint{Color: canvas.Transparent}
	crossStyle.Stroke = canvas.Paint{Color: nrgbaToRGBA(color.NRGBA{G: 160, A: 255})}
	crossStyle.StrokeWidth = 0.6

	cx, cy := toCanvas(r.res.Centroid)
	arm := 2.5
	crossPath := &canvas.Path{}
	crossPath.MoveTo(cx-arm, cy)
	crossPath.LineTo(cx+arm, cy)
	crossPath.MoveTo(cx, cy-arm)
	crossPath.LineTo(cx, cy+arm)
	renderer.RenderPath(crossPath, crossStyle, canvas.Identity)
}

// niceStep rounds a raw interval up to a 1/2/5 decade step.
func niceStep(raw float64) float64 {
	if raw <= 0 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch {
	case raw/mag <= 1:
		return mag
	case raw/mag <= 2:
		return 2 * mag
	case raw/mag <= 5:
		return 5 * mag
	default:
		return 10 * mag
	}
}
