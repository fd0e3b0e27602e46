// Package ring implements the segmented-ring audio visualization: ring
// geometry built once at scene-construction time, and a per-frame mapper
// that converts frequency-domain samples into deterministic transforms of
// each segment.
package ring

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Segment is one discrete mesh unit of a circular ring.
//
// Index, Angle and BasePosition are fixed at construction; the remaining
// fields are rewritten by the mapper every frame. The mapper never creates
// or destroys segments.
type Segment struct {
	// Index is the segment's position in the ring [0, N)
	Index int

	// Angle is the angular position in radians
	Angle float64

	// BasePosition is the segment's resting position on the ring circle
	BasePosition mgl32.Vec3

	// Scale is the current per-axis scale factor
	Scale mgl32.Vec3

	// OffsetY is the vertical offset keeping growth centered
	OffsetY float32

	// Color is the current gradient color
	Color Color

	// Emissive is the current emissive intensity
	Emissive float64
}

// BuildRing constructs n segments evenly spaced on a circle of the given
// radius in the XZ plane. Geometry is fixed for the lifetime of the ring.
func BuildRing(n int, radius float32) []*Segment {
	if n <= 0 {
		return nil
	}

	segments := make([]*Segment, n)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		segments[i] = &Segment{
			Index: i,
			Angle: angle,
			BasePosition: mgl32.Vec3{
				radius * float32(math.Cos(angle)),
				0,
				radius * float32(math.Sin(angle)),
			},
			Scale: mgl32.Vec3{1, 1, 1},
		}
	}
	return segments
}
