package models

import (
	"encoding/binary"
	"sort"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// BuildGeometry encodes the route's waypoints as a WKB LINESTRING (lng/lat).
// Routes with fewer than two waypoints carry no geometry.
func (r *Route) BuildGeometry() error {
	if len(r.Waypoints) < 2 {
		r.Geometry = nil
		return nil
	}
	pts := make([]Waypoint, len(r.Waypoints))
	copy(pts, r.Waypoints)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Seq < pts[j].Seq })

	coords := make([]geom.Coord, 0, len(pts))
	for _, p := range pts {
		coords = append(coords, geom.Coord{p.Longitude, p.Latitude})
	}
	ls, err := geom.NewLineString(geom.XY).SetCoords(coords)
	if err != nil {
		return err
	}
	b, err := wkb.Marshal(ls, binary.LittleEndian)
	if err != nil {
		return err
	}
	r.Geometry = b
	return nil
}

// GeoJSON returns the route geometry as a GeoJSON string, or "" when the
// route has none.
func (r *Route) GeoJSON() (string, error) {
	if len(r.Geometry) == 0 {
		return "", nil
	}
	g, err := wkb.Unmarshal(r.Geometry)
	if err != nil {
		return "", err
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
