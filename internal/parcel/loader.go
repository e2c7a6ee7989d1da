// Package parcel imports field boundaries from ESRI shapefiles.
package parcel

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/agrisight/agrisight/internal/model"
)

// Meters per degree of latitude, and per degree of longitude at the equator.
// Longitude spacing shrinks with cos(latitude).
const (
	metersPerDegLat = 110574.0
	metersPerDegLon = 111320.0
)

// nameFields are the attribute names probed (case-insensitively) for a
// parcel label, in order of preference.
var nameFields = []string{"name", "parcel", "label", "field"}

// LoadShapefile reads polygon records from a shapefile and returns them as
// parcels with planar areas converted to hectares. Non-polygon and malformed
// records are skipped.
func LoadShapefile(path string) ([]model.Parcel, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "parcel: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	nameIdx := -1
	for i, f := range reader.Fields() {
		name := strings.ToLower(strings.TrimRight(f.String(), "\x00"))
		for _, candidate := range nameFields {
			if name == candidate {
				nameIdx = i
				break
			}
		}
		if nameIdx >= 0 {
			break
		}
	}

	var parcels []model.Parcel
	var skipped int

	for reader.Next() {
		n, shape := reader.Shape()

		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil || poly.NumParts == 0 || len(poly.Points) == 0 {
			skipped++
			continue
		}

		mp := toMultiPolygon(poly)
		if mp == nil || mp.NumPolygons() == 0 {
			skipped++
			continue
		}

		lon, lat := centroid(mp)
		name := fmt.Sprintf("Parcel %d", n+1)
		if nameIdx >= 0 {
			if v := strings.TrimSpace(strings.TrimRight(reader.Attribute(nameIdx), "\x00")); v != "" {
				name = v
			}
		}

		parcels = append(parcels, model.Parcel{
			Name:        name,
			AreaHa:      hectares(mp.Area(), lat),
			CentroidLat: lat,
			CentroidLon: lon,
		})
	}

	if skipped > 0 {
		zap.L().Debug("parcel: skipped shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}

	return parcels, nil
}

// toMultiPolygon converts a shapefile Polygon record to a geom.MultiPolygon.
func toMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, 2*(end-start))
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("parcel: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("parcel: skipping malformed part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	return mp
}

// hectares converts a planar area in squared degrees at the given latitude.
func hectares(areaDeg2, lat float64) float64 {
	areaM2 := math.Abs(areaDeg2) * metersPerDegLat * metersPerDegLon * math.Cos(lat*math.Pi/180)
	return areaM2 / 10000
}

// centroid returns the area-weighted centroid of the multipolygon in
// (lon, lat) order. Degenerate geometries fall back to the vertex mean.
func centroid(mp *geom.MultiPolygon) (lon, lat float64) {
	var cx, cy, areaSum float64
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		for r := 0; r < poly.NumLinearRings(); r++ {
			flat := poly.LinearRing(r).FlatCoords()
			for j := 0; j+3 < len(flat); j += 2 {
				x0, y0 := flat[j], flat[j+1]
				x1, y1 := flat[j+2], flat[j+3]
				cross := x0*y1 - x1*y0
				cx += (x0 + x1) * cross
				cy += (y0 + y1) * cross
				areaSum += cross
			}
		}
	}
	if areaSum != 0 {
		return cx / (3 * areaSum), cy / (3 * areaSum)
	}

	var sx, sy float64
	var n int
	for i := 0; i < mp.NumPolygons(); i++ {
		flat := mp.Polygon(i).FlatCoords()
		for j := 0; j+1 < len(flat); j += 2 {
			sx += flat[j]
			sy += flat[j+1]
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sx / float64(n), sy / float64(n)
}
