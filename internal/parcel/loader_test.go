package parcel

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// squarePolygon builds a closed square ring of sideDeg degrees centered on
// (lon, lat), clockwise per shapefile convention.
func squarePolygon(lon, lat, sideDeg float64) *shp.Polygon {
	h := sideDeg / 2
	points := []shp.Point{
		{X: lon - h, Y: lat - h},
		{X: lon - h, Y: lat + h},
		{X: lon + h, Y: lat + h},
		{X: lon + h, Y: lat - h},
		{X: lon - h, Y: lat - h},
	}
	return &shp.Polygon{
		NumParts:  1,
		NumPoints: int32(len(points)),
		Parts:     []int32{0},
		Points:    points,
	}
}

func TestToMultiPolygon(t *testing.T) {
	t.Parallel()

	mp := toMultiPolygon(squarePolygon(34.89, -6.37, 0.01))
	require.NotNil(t, mp)
	require.Equal(t, 1, mp.NumPolygons())
	assert.Equal(t, 4326, mp.SRID())
	// Closed square ring keeps all five vertices.
	assert.Len(t, mp.Polygon(0).LinearRing(0).FlatCoords(), 10)
}

func TestCentroidAndArea(t *testing.T) {
	t.Parallel()

	mp := toMultiPolygon(squarePolygon(34.888822, -6.369028, 0.01))
	require.NotNil(t, mp)

	lon, lat := centroid(mp)
	assert.InDelta(t, 34.888822, lon, 0.0001)
	assert.InDelta(t, -6.369028, lat, 0.0001)

	// 0.01 deg square near 6.37°S is roughly 1.11 km x 1.10 km.
	wantHa := 0.01 * 0.01 * metersPerDegLat * metersPerDegLon * math.Cos(lat*math.Pi/180) / 10000
	gotHa := hectares(mp.Area(), lat)
	assert.InDelta(t, wantHa, gotHa, wantHa*0.01)
	assert.Greater(t, gotHa, 100.0)
	assert.Less(t, gotHa, 140.0)
}

func TestCentroidDegenerateFallsBackToVertexMean(t *testing.T) {
	t.Parallel()

	// Zero-area sliver: all points on one line.
	poly := &shp.Polygon{
		NumParts:  1,
		NumPoints: 3,
		Parts:     []int32{0},
		Points: []shp.Point{
			{X: 10, Y: 2},
			{X: 20, Y: 2},
			{X: 10, Y: 2},
		},
	}
	mp := toMultiPolygon(poly)
	require.NotNil(t, mp)

	lon, lat := centroid(mp)
	assert.InDelta(t, 13.333333, lon, 0.0001)
	assert.InDelta(t, 2.0, lat, 0.0001)
}

func TestHectares(t *testing.T) {
	t.Parallel()

	// One square degree at the equator is about 1.23 million hectares.
	got := hectares(1.0, 0)
	assert.InDelta(t, 1230910, got, 100)

	// Sign of the planar area must not matter.
	assert.InDelta(t, got, hectares(-1.0, 0), 0.001)

	assert.Less(t, hectares(1.0, 60), got)
}

func TestLoadShapefileMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadShapefile(filepath.Join(t.TempDir(), "nope.shp"))
	assert.Error(t, err)
}
