package export

import (
	"fmt"
	"image/color"
	"io"

	"github.com/twpayne/go-kml/v2"
)

var red = color.RGBA{R: 255, A: 255}

// ObstacleTrack is the sampled path of one obstacle.
type ObstacleTrack struct {
	ID     uint
	Name   string
	Points []TrackPoint
}

func (t ObstacleTrack) title() string {
	if t.Name != "" {
		return t.Name
	}
	return fmt.Sprintf("Obstacle Path %d", t.ID)
}

// WriteKML writes each track as a time-stamped gx:Track, extruded to the
// ground at absolute altitude.
func WriteKML(w io.Writer, tracks []ObstacleTrack) error {
	placemarks := make([]kml.Element, 0, len(tracks)+1)
	placemarks = append(placemarks, kml.Name("Moving Obstacles"))
	for _, trk := range tracks {
		children := []kml.Element{
			kml.AltitudeMode(kml.AltitudeModeAbsolute),
			kml.Extrude(true),
		}
		for _, p := range trk.Points {
			children = append(children, kml.When(p.Time.UTC()))
		}
		for _, p := range trk.Points {
			lon, lat, alt := p.Coord()
			children = append(children, kml.GxCoord(kml.Coordinate{Lon: lon, Lat: lat, Alt: alt}))
		}

		placemarks = append(placemarks, kml.Placemark(
			kml.Name(trk.title()),
			kml.Style(
				kml.LineStyle(kml.Color(red), kml.Width(2)),
			),
			kml.GxTrack(children...),
		))
	}

	doc := kml.GxKML(kml.Document(placemarks...))
	return doc.WriteIndent(w, "", "  ")
}

// WriteLiveKML writes each track as an extruded line string without
// timestamps.
func WriteLiveKML(w io.Writer, tracks []ObstacleTrack) error {
	placemarks := make([]kml.Element, 0, len(tracks)+1)
	placemarks = append(placemarks, kml.Name("Live Obstacles"))
	for _, trk := range tracks {
		coords := make([]kml.Coordinate, 0, len(trk.Points))
		for _, p := range trk.Points {
			lon, lat, alt := p.Coord()
			coords = append(coords, kml.Coordinate{Lon: lon, Lat: lat, Alt: alt})
		}
		placemarks = append(placemarks, kml.Placemark(
			kml.Name(trk.title()),
			kml.Style(
				kml.LineStyle(kml.Color(red)),
				kml.PolyStyle(kml.Color(color.RGBA{R: 255, A: 100})),
			),
			kml.LineString(
				kml.AltitudeMode(kml.AltitudeModeAbsolute),
				kml.Extrude(true),
				kml.Coordinates(coords...),
			),
		))
	}

	doc := kml.KML(kml.Document(placemarks...))
	return doc.WriteIndent(w, "", "  ")
}
