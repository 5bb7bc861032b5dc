// Package geo provides the spatial primitives of the simulation:
// uniform point sampling over a disc and great-circle distance.
package geo

import (
	"math"
	"math/rand"
)

// EarthRadiusKM is the spherical earth radius used for haversine distance.
const EarthRadiusKM = 6371.0

// kmPerDegree is the flat-earth degree conversion, valid at city scale.
const kmPerDegree = 111.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// SampleDisc draws n points approximately uniformly distributed over a
// disc of radiusKM around center. The radius is drawn as R*sqrt(u) so
// density is uniform by area; a linear radius draw would over-concentrate
// points near the center.
func SampleDisc(rng *rand.Rand, center Point, radiusKM float64, n int) []Point {
	pts := make([]Point, n)
	for i := range pts {
		ang := rng.Float64() * 2 * math.Pi
		r := radiusKM * math.Sqrt(rng.Float64())
		pts[i] = Point{
			Lat: center.Lat + (r/kmPerDegree)*math.Cos(ang),
			Lon: center.Lon + (r/kmPerDegree)*math.Sin(ang),
		}
	}
	return pts
}

// HaversineKM returns the great-circle distance in kilometers between
// two points on a sphere of radius EarthRadiusKM.
func HaversineKM(a, b Point) float64 {
	phi1 := radians(a.Lat)
	phi2 := radians(b.Lat)
	dphi := radians(b.Lat - a.Lat)
	dlambda := radians(b.Lon - a.Lon)

	h := math.Sin(dphi/2)*math.Sin(dphi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dlambda/2)*math.Sin(dlambda/2)
	return 2 * EarthRadiusKM * math.Asin(math.Sqrt(h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
