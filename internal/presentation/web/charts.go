package web

import (
	"fmt"
	"html"
	"html/template"
	"math"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Series colours.
const (
	colorPatient   = "#d62728"
	colorReference = "#1f77b4"
)

// BarGroup is one measurement compared between the patient and the reference sample.
type BarGroup struct {
	Label     string
	Patient   float64
	Reference float64
}

// RadarAxis is one spoke of the radar chart. Value is already normalised to [0,1].
type RadarAxis struct {
	Label string
	Value float64
}

// BarChart renders a grouped bar chart as inline SVG.
func BarChart(groups []BarGroup) template.HTML {
	if len(groups) == 0 {
		return ""
	}

	const (
		width, height = 560.0, 300.0
		left, bottom  = 48.0, 40.0
		top           = 30.0
		barWidth      = 28.0
	)
	plotH := height - top - bottom
	slot := (width - left) / float64(len(groups))

	maxV := 0.0
	for _, g := range groups {
		maxV = math.Max(maxV, math.Max(g.Patient, g.Reference))
	}
	if maxV <= 0 {
		maxV = 1
	}
	scale := plotH / (maxV * 1.1)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.0f %.0f" width="%.0f" height="%.0f" role="img" class="chart bar-chart">`, width, height, width, height)
	b.WriteString(`<title>Patient values compared with reference sample means</title>`)
	fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#444" stroke-width="1"/>`, left, height-bottom, width, height-bottom)

	for i, g := range groups {
		x := left + float64(i)*slot + slot/2 - barWidth
		bar(&b, x, height-bottom, g.Patient*scale, barWidth, colorPatient, g.Patient)
		bar(&b, x+barWidth, height-bottom, g.Reference*scale, barWidth, colorReference, g.Reference)
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="middle" font-size="12">%s</text>`,
			x+barWidth, height-bottom+18, html.EscapeString(g.Label))
	}

	legend(&b, left, 16, "Patient", colorPatient)
	legend(&b, left+110, 16, "Reference mean", colorReference)
	b.WriteString(`</svg>`)

	return template.HTML(svgPolicy().Sanitize(b.String())) //nolint:gosec // sanitised above
}

func bar(b *strings.Builder, x, baseline, h, w float64, color string, value float64) {
	fmt.Fprintf(b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"><title>%.1f</title></rect>`,
		x, baseline-h, w-2, h, color, value)
	fmt.Fprintf(b, `<text x="%.1f" y="%.1f" text-anchor="middle" font-size="10">%.0f</text>`,
		x+w/2-1, baseline-h-4, value)
}

func legend(b *strings.Builder, x, y float64, label, color string) {
	fmt.Fprintf(b, `<rect x="%.1f" y="%.1f" width="12" height="12" fill="%s"/>`, x, y-10, color)
	fmt.Fprintf(b, `<text x="%.1f" y="%.1f" font-size="12">%s</text>`, x+16, y, html.EscapeString(label))
}

// RadarChart renders a polar chart of normalised inputs as inline SVG.
func RadarChart(axes []RadarAxis) template.HTML {
	if len(axes) < 3 {
		return ""
	}

	const (
		size   = 420.0
		radius = 150.0
	)
	cx, cy := size/2, size/2
	n := float64(len(axes))

	point := func(i int, r float64) (float64, float64) {
		angle := 2*math.Pi*float64(i)/n - math.Pi/2
		return cx + r*math.Cos(angle), cy + r*math.Sin(angle)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.0f %.0f" width="%.0f" height="%.0f" role="img" class="chart radar-chart">`, size, size, size, size)
	b.WriteString(`<title>Patient inputs relative to their form ranges</title>`)

	for _, ring := range []float64{0.25, 0.5, 0.75, 1} {
		pts := make([]string, len(axes))
		for i := range axes {
			x, y := point(i, radius*ring)
			pts[i] = fmt.Sprintf("%.1f,%.1f", x, y)
		}
		fmt.Fprintf(&b, `<polygon points="%s" fill="none" stroke="#ccc" stroke-width="1"/>`, strings.Join(pts, " "))
	}

	values := make([]string, len(axes))
	for i, a := range axes {
		ex, ey := point(i, radius)
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#ccc" stroke-width="1"/>`, cx, cy, ex, ey)

		lx, ly := point(i, radius+22)
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="middle" font-size="11">%s</text>`, lx, ly, html.EscapeString(a.Label))

		vx, vy := point(i, radius*clamp01(a.Value))
		values[i] = fmt.Sprintf("%.1f,%.1f", vx, vy)
	}
	fmt.Fprintf(&b, `<polygon points="%s" fill="%s" fill-opacity="0.35" stroke="%s" stroke-width="2"/>`,
		strings.Join(values, " "), colorPatient, colorPatient)
	b.WriteString(`</svg>`)

	return template.HTML(svgPolicy().Sanitize(b.String())) //nolint:gosec // sanitised above
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(0, math.Min(1, x))
}

var (
	svgPolicyOnce sync.Once
	chartPolicy   *bluemonday.Policy
)

func svgPolicy() *bluemonday.Policy {
	svgPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("svg", "g", "rect", "line", "polygon", "text", "title")

		policy.AllowAttrs("xmlns", "viewBox", "width", "height", "role", "class").OnElements("svg")
		policy.AllowAttrs("x", "y", "width", "height", "fill").OnElements("rect")
		policy.AllowAttrs("x1", "y1", "x2", "y2", "stroke", "stroke-width").OnElements("line")
		policy.AllowAttrs("points", "fill", "fill-opacity", "stroke", "stroke-width").OnElements("polygon")
		policy.AllowAttrs("x", "y", "text-anchor", "font-size").OnElements("text")

		chartPolicy = policy
	})
	return chartPolicy
}
