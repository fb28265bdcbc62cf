package projection

import "math"

// rawFunc maps rotated longitude/latitude in radians onto the unit plane,
// y pointing north.
type rawFunc func(lambda, phi float64) (x, y float64)

const (
	radians = math.Pi / 180
	epsilon = 1e-6

	// mercatorMaxLat keeps the poles out of the log singularity.
	mercatorMaxLat = 85.05112878 * radians
)

func equirectangular(lambda, phi float64) (float64, float64) {
	return lambda, phi
}

func mercator(lambda, phi float64) (float64, float64) {
	phi = math.Max(-mercatorMaxLat, math.Min(mercatorMaxLat, phi))
	return lambda, math.Log(math.Tan(math.Pi/4 + phi/2))
}

// conicEqualArea returns the Albers equal-area conic for the two standard
// parallels.
func conicEqualArea(phi0, phi1 float64) rawFunc {
	sinPhi0 := math.Sin(phi0)
	n := (sinPhi0 + math.Sin(phi1)) / 2
	c := 1 + sinPhi0*(2*n-sinPhi0)
	rho0 := math.Sqrt(c) / n
	return func(lambda, phi float64) (float64, float64) {
		rho := math.Sqrt(c-2*n*math.Sin(phi)) / n
		lambda *= n
		return rho * math.Sin(lambda), rho0 - rho*math.Cos(lambda)
	}
}

func conicEquidistant(phi0, phi1 float64) rawFunc {
	cosPhi0 := math.Cos(phi0)
	n := math.Sin(phi0)
	if math.Abs(phi0-phi1) > epsilon {
		n = (cosPhi0 - math.Cos(phi1)) / (phi1 - phi0)
	}
	g := cosPhi0/n + phi0
	return func(lambda, phi float64) (float64, float64) {
		rho := g - phi
		lambda *= n
		return rho * math.Sin(lambda), g - rho*math.Cos(lambda)
	}
}

// azimuthal builds an azimuthal projection from its radial scale function.
func azimuthal(scale func(cosLambdaCosPhi float64) float64) rawFunc {
	return func(lambda, phi float64) (float64, float64) {
		cosLambda, cosPhi := math.Cos(lambda), math.Cos(phi)
		k := scale(cosLambda * cosPhi)
		return k * cosPhi * math.Sin(lambda), k * math.Sin(phi)
	}
}

var azimuthalEqualArea = azimuthal(func(c float64) float64 {
	return math.Sqrt(2 / (1 + c))
})

var azimuthalEquidistant = azimuthal(func(c float64) float64 {
	a := math.Acos(math.Max(-1, math.Min(1, c)))
	if a == 0 {
		return 1
	}
	return a / math.Sin(a)
})

var stereographic = azimuthal(func(c float64) float64 {
	return 1 / (1 + c)
})

// preset is a raw projection together with its default rotation and
// centre.
type preset struct {
	raw    rawFunc
	rotate float64    // degrees of longitude
	center [2]float64 // degrees
}

var presets = map[string]preset{
	"equirectangular":      {raw: equirectangular},
	"mercator":             {raw: mercator},
	"conicEqualArea":       {raw: conicEqualArea(0, 60*radians)},
	"albers":               {raw: conicEqualArea(29.5*radians, 45.5*radians), rotate: 96, center: [2]float64{-0.6, 38.7}},
	"conicEquidistant":     {raw: conicEquidistant(0, 60*radians)},
	"azimuthalEqualArea":   {raw: azimuthalEqualArea},
	"azimuthalEquidistant": {raw: azimuthalEquidistant},
	"stereographic":        {raw: stereographic},
}

// Algorithms returns the supported world-family projection names.
func Algorithms() []string {
	return []string{
		"equirectangular", "mercator", "conicEqualArea", "albers",
		"conicEquidistant", "azimuthalEqualArea", "azimuthalEquidistant", "stereographic",
	}
}
