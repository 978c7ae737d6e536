package geometry

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// ShapefileOptions configures the shapefile loaders.
type ShapefileOptions struct {
	IDField   string // attribute holding the identifier; default: record number
	NameField string // optional region display name attribute
}

// LoadRegionsShapefile reads polygon records from a shapefile into a
// RegionSet, preserving record order as the canonical region order.
// Records with missing or malformed geometry are skipped with a warning.
func LoadRegionsShapefile(path string, opts ShapefileOptions) (*RegionSet, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geometry: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fieldIdx := shapefileFields(reader)

	var regions []Region
	var skipped int
	for reader.Next() {
		n, shape := reader.Shape()

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		g := polygonToMultiPolygon(poly)
		if g == nil {
			skipped++
			continue
		}

		regions = append(regions, Region{
			ID:   recordID(reader, fieldIdx, opts.IDField, n),
			Name: fieldValue(reader, fieldIdx, opts.NameField),
			Geom: g,
		})
	}

	if skipped > 0 {
		zap.L().Warn("geometry: skipped shapefile records",
			zap.String("file", path),
			zap.Int("skipped", skipped),
		)
	}

	return NewRegionSet(strings.TrimSuffix(filepath.Base(path), ".shp"), regions)
}

// LoadPointsShapefile reads point records from a shapefile into a
// PointSet. All attributes are carried into the point's attribute bag.
func LoadPointsShapefile(path string, opts ShapefileOptions) (*PointSet, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geometry: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fieldIdx := shapefileFields(reader)

	var points []Point
	var skipped int
	for reader.Next() {
		n, shape := reader.Shape()

		pt, ok := shape.(*shp.Point)
		if !ok {
			skipped++
			continue
		}

		attrs := make(map[string]string, len(fieldIdx))
		for name, i := range fieldIdx {
			attrs[name] = fieldAt(reader, i)
		}
		points = append(points, Point{
			ID:    recordID(reader, fieldIdx, opts.IDField, n),
			Coord: geom.Coord{pt.X, pt.Y},
			Attrs: attrs,
		})
	}

	if skipped > 0 {
		zap.L().Warn("geometry: skipped shapefile records",
			zap.String("file", path),
			zap.Int("skipped", skipped),
		)
	}

	return NewPointSet(strings.TrimSuffix(filepath.Base(path), ".shp"), points), nil
}

// polygonToMultiPolygon converts a shapefile Polygon to a
// geom.MultiPolygon. Shapefile winding order classifies the parts:
// clockwise rings are shells, counter-clockwise rings are holes in the
// preceding shell. Malformed parts are dropped.
func polygonToMultiPolygon(p *shp.Polygon) geom.T {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)
	var shell *geom.Polygon

	flush := func() {
		if shell == nil {
			return
		}
		if err := mp.Push(shell); err != nil {
			zap.L().Debug("geometry: skipping malformed polygon part", zap.Error(err))
		}
		shell = nil
	}

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		if ringArea(flat) <= 0 {
			flush()
			shell = geom.NewPolygon(geom.XY)
			if err := shell.Push(ring); err != nil {
				zap.L().Debug("geometry: skipping malformed shell ring", zap.Int32("part", i), zap.Error(err))
				shell = nil
			}
			continue
		}

		if shell == nil {
			zap.L().Debug("geometry: skipping hole ring without preceding shell", zap.Int32("part", i))
			continue
		}
		if err := shell.Push(ring); err != nil {
			zap.L().Debug("geometry: skipping malformed hole ring", zap.Int32("part", i), zap.Error(err))
		}
	}
	flush()

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// ringArea returns the signed shoelace area of a flat XY ring; negative
// for clockwise rings.
func ringArea(flat []float64) float64 {
	var area float64
	for i := 0; i+3 < len(flat); i += 2 {
		area += flat[i]*flat[i+3] - flat[i+2]*flat[i+1]
	}
	return area / 2
}

// shapefileFields builds a lowercase field name → index map.
func shapefileFields(reader *shp.Reader) map[string]int {
	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}
	return fieldIdx
}

func fieldAt(reader *shp.Reader, i int) string {
	return strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
}

func fieldValue(reader *shp.Reader, fieldIdx map[string]int, name string) string {
	if name == "" {
		return ""
	}
	i, ok := fieldIdx[strings.ToLower(name)]
	if !ok {
		return ""
	}
	return fieldAt(reader, i)
}

func recordID(reader *shp.Reader, fieldIdx map[string]int, idField string, n int) string {
	if id := fieldValue(reader, fieldIdx, idField); id != "" {
		return id
	}
	return strconv.Itoa(n)
}
