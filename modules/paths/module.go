// Package paths contributes the 2D point generators used inside legacy
// geometry dimension arrays. Each generator expands one descriptor into a
// literal point list that the walker splices in place.
package paths

import (
	"context"
	"fmt"
	"math"

	"github.com/vk/sceneforge/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers every point generator with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterGenerator("arc", genArc)
	r.RegisterGenerator("bezier", genBezier)
	r.RegisterGenerator("polygon", genPolygon)
	r.RegisterGenerator("star", genStar)
	r.RegisterGenerator("spline", genSpline)
	r.RegisterGenerator("offset", genOffset)
	r.RegisterGenerator("mirror", genMirror)
}

// genArc samples a circular arc from startAngle to endAngle (degrees).
func genArc(_ context.Context, params map[string]any) ([][2]float64, error) {
	radius := num(params, "radius", 1)
	if radius <= 0 {
		return nil, fmt.Errorf("arc radius must be positive, got %v", radius)
	}
	start := num(params, "startAngle", 0) * math.Pi / 180
	end := num(params, "endAngle", 90) * math.Pi / 180
	segments := int(num(params, "segments", 16))
	if segments < 1 {
		segments = 1
	}

	out := make([][2]float64, segments+1)
	for i := 0; i <= segments; i++ {
		angle := start + (end-start)*float64(i)/float64(segments)
		out[i] = [2]float64{radius * math.Cos(angle), radius * math.Sin(angle)}
	}
	return out, nil
}

// genBezier samples a cubic bezier through its four control points, given as
// x1..x4 / y1..y4.
func genBezier(_ context.Context, params map[string]any) ([][2]float64, error) {
	p := [4][2]float64{
		{num(params, "x1", 0), num(params, "y1", 0)},
		{num(params, "x2", 0), num(params, "y2", 1)},
		{num(params, "x3", 1), num(params, "y3", 1)},
		{num(params, "x4", 1), num(params, "y4", 0)},
	}
	segments := int(num(params, "segments", 16))
	if segments < 1 {
		segments = 1
	}

	out := make([][2]float64, segments+1)
	for i := 0; i <= segments; i++ {
		t := float64(i) / float64(segments)
		u := 1 - t
		out[i] = [2]float64{
			u*u*u*p[0][0] + 3*u*u*t*p[1][0] + 3*u*t*t*p[2][0] + t*t*t*p[3][0],
			u*u*u*p[0][1] + 3*u*u*t*p[1][1] + 3*u*t*t*p[2][1] + t*t*t*p[3][1],
		}
	}
	return out, nil
}

func genPolygon(_ context.Context, params map[string]any) ([][2]float64, error) {
	radius := num(params, "radius", 1)
	sides := int(num(params, "sides", 6))
	if radius <= 0 || sides < 3 {
		return nil, fmt.Errorf("polygon needs positive radius and at least 3 sides")
	}

	out := make([][2]float64, sides)
	for i := 0; i < sides; i++ {
		angle := 2 * math.Pi * float64(i) / float64(sides)
		out[i] = [2]float64{radius * math.Cos(angle), radius * math.Sin(angle)}
	}
	return out, nil
}

// genStar alternates between the outer and inner radius, two vertices per
// point.
func genStar(_ context.Context, params map[string]any) ([][2]float64, error) {
	outer := num(params, "radius", 1)
	inner := num(params, "innerRadius", outer/2)
	points := int(num(params, "points", 5))
	if outer <= 0 || inner <= 0 || points < 2 {
		return nil, fmt.Errorf("star needs positive radii and at least 2 points")
	}

	out := make([][2]float64, points*2)
	for i := 0; i < points*2; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		angle := math.Pi * float64(i) / float64(points)
		out[i] = [2]float64{r * math.Cos(angle), r * math.Sin(angle)}
	}
	return out, nil
}

// genSpline interpolates a Catmull-Rom spline through the given control
// points ("points": flat [x,y,x,y,...] list).
func genSpline(_ context.Context, params map[string]any) ([][2]float64, error) {
	ctrl, err := pointList(params, "points")
	if err != nil {
		return nil, err
	}
	if len(ctrl) < 2 {
		return nil, fmt.Errorf("spline needs at least 2 control points, got %d", len(ctrl))
	}
	segments := int(num(params, "segments", 8))
	if segments < 1 {
		segments = 1
	}

	var out [][2]float64
	for i := 0; i < len(ctrl)-1; i++ {
		p0 := ctrl[clampIndex(i-1, len(ctrl))]
		p1 := ctrl[i]
		p2 := ctrl[i+1]
		p3 := ctrl[clampIndex(i+2, len(ctrl))]
		for s := 0; s < segments; s++ {
			t := float64(s) / float64(segments)
			out = append(out, catmullRom(p0, p1, p2, p3, t))
		}
	}
	out = append(out, ctrl[len(ctrl)-1])
	return out, nil
}

// genOffset translates a point list by dx/dy.
func genOffset(_ context.Context, params map[string]any) ([][2]float64, error) {
	pts, err := pointList(params, "points")
	if err != nil {
		return nil, err
	}
	dx := num(params, "dx", 0)
	dy := num(params, "dy", 0)

	out := make([][2]float64, len(pts))
	for i, p := range pts {
		out[i] = [2]float64{p[0] + dx, p[1] + dy}
	}
	return out, nil
}

// genMirror reflects a point list across the x or y axis and appends the
// reflection in reverse order, producing a symmetric outline.
func genMirror(_ context.Context, params map[string]any) ([][2]float64, error) {
	pts, err := pointList(params, "points")
	if err != nil {
		return nil, err
	}
	axis, _ := params["axis"].(string)

	out := make([][2]float64, 0, len(pts)*2)
	out = append(out, pts...)
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		if axis == "y" {
			out = append(out, [2]float64{p[0], -p[1]})
			continue
		}
		out = append(out, [2]float64{-p[0], p[1]})
	}
	return out, nil
}

func catmullRom(p0, p1, p2, p3 [2]float64, t float64) [2]float64 {
	t2 := t * t
	t3 := t2 * t
	var out [2]float64
	for axis := 0; axis < 2; axis++ {
		out[axis] = 0.5 * ((2 * p1[axis]) +
			(-p0[axis]+p2[axis])*t +
			(2*p0[axis]-5*p1[axis]+4*p2[axis]-p3[axis])*t2 +
			(-p0[axis]+3*p1[axis]-3*p2[axis]+p3[axis])*t3)
	}
	return out
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// pointList reads a flat [x,y,x,y,...] parameter into point pairs.
func pointList(params map[string]any, key string) ([][2]float64, error) {
	raw, ok := params[key].([]any)
	if !ok {
		return nil, fmt.Errorf("parameter %q must be a flat [x,y,...] list", key)
	}
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("parameter %q has an odd number of coordinates", key)
	}
	out := make([][2]float64, 0, len(raw)/2)
	for i := 0; i < len(raw); i += 2 {
		x, xok := raw[i].(float64)
		y, yok := raw[i+1].(float64)
		if !xok || !yok {
			return nil, fmt.Errorf("parameter %q contains a non-numeric coordinate", key)
		}
		out = append(out, [2]float64{x, y})
	}
	return out, nil
}

func num(params map[string]any, key string, fallback float64) float64 {
	if v, ok := params[key]; ok {
		if f, isNum := v.(float64); isNum {
			return f
		}
	}
	return fallback
}
