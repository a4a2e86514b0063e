package raster

import (
	"fmt"
	"image"

	"wallpaint/internal/mathutil"
)

// LightConfig holds the fixed lighting parameters of the wall.
type LightConfig struct {
	LightDir     mathutil.Vec3 // normalized direction towards the light
	ViewDir      mathutil.Vec3 // normalized direction towards the viewer
	Shininess    int           // integer specular exponent
	SpecularGain float64       // K_spec: scales specular into byte units
	Bias         float64       // ambient lift added to paint channels
}

// DefaultLightConfig returns the lighting the brick wall was tuned for.
func DefaultLightConfig() LightConfig {
	return LightConfig{
		LightDir:     mathutil.Vec3{1, 3, 6}.Normalize(),
		ViewDir:      mathutil.Vec3{0, 0, 1},
		Shininess:    3,
		SpecularGain: 2000,
		Bias:         8,
	}
}

// Normalized returns a copy with both directions scaled to unit length,
// so configs built from raw vectors behave like the default.
func (lc LightConfig) Normalized() LightConfig {
	lc.LightDir = lc.LightDir.Normalize()
	lc.ViewDir = lc.ViewDir.Normalize()
	return lc
}

// Shade evaluates the lighting model for one unnormalized surface normal.
// dotLN is the diffuse term and is deliberately left unclamped: surfaces
// facing away from the light produce negative values.
//
// The reflection vector is r = 2·dotLN·(n − l). When it vanishes
// (n == l, or dotLN == 0) the specular term is 0.
func (lc *LightConfig) Shade(normal mathutil.Vec3) (dotLN, spec float64) {
	n := normal.Normalize()
	l := lc.LightDir
	dotLN = n.Dot(l)

	r := n.Sub(l).Scale(2 * dotLN).Normalize()
	dotRV := r.Dot(lc.ViewDir)
	if dotRV < 0 {
		dotRV = 0
	}
	return dotLN, ipow(dotRV, lc.Shininess)
}

// PrecomputeLighting tiles the normal map to w×h and derives the shading
// and specular fields. Both fields are complete when it returns.
func PrecomputeLighting(normalMap *image.NRGBA, w, h int, lc LightConfig, workers int) (shading, specular *ScalarField, err error) {
	if normalMap == nil {
		return nil, nil, fmt.Errorf("raster: precompute lighting: no normal map")
	}
	tile := Tile(normalMap, w, h)
	shading, specular = LightingFromTile(tile, lc, workers)
	return shading, specular, nil
}

// LightingFromTile derives shading and specular from an already tiled
// normal map.
func LightingFromTile(tile *PixelBuffer, lc LightConfig, workers int) (shading, specular *ScalarField) {
	w, h := tile.Width, tile.Height
	shading = NewScalarField(w, h)
	specular = NewScalarField(w, h)

	forRows(0, h, workers, func(y int) {
		for x := 0; x < w; x++ {
			i := x + y*w
			p := i * 4
			n := mathutil.DecodeNormal(tile.Pix[p], tile.Pix[p+1], tile.Pix[p+2])
			shading.Values[i], specular.Values[i] = lc.Shade(n)
		}
	})
	return shading, specular
}

func ipow(x float64, n int) float64 {
	r := 1.0
	for ; n > 0; n-- {
		r *= x
	}
	return r
}
