package gtfs

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
)

// Parse reads a GTFS zip file and returns parsed data
func Parse(zipPath string) (*Data, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()
	return parseArchive(&r.Reader)
}

// ParseReader parses a GTFS zip held in memory or any other io.ReaderAt
func ParseReader(ra io.ReaderAt, size int64) (*Data, error) {
	r, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	return parseArchive(r)
}

func parseArchive(r *zip.Reader) (*Data, error) {
	files := make(map[string]*zip.File)
	for _, f := range r.File {
		// some feeds nest everything in one directory
		name := f.Name
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		files[name] = f
	}

	for _, required := range []string{"routes.txt", "stops.txt", "trips.txt", "stop_times.txt"} {
		if _, ok := files[required]; !ok {
			return nil, fmt.Errorf("gtfs feed is missing %s", required)
		}
	}

	data := &Data{}

	err := eachRecord(files["routes.txt"], func(row record) {
		routeType, _ := strconv.Atoi(row.get("route_type"))
		data.Routes = append(data.Routes, Route{
			RouteID:        row.get("route_id"),
			RouteShortName: row.get("route_short_name"),
			RouteLongName:  row.get("route_long_name"),
			RouteType:      routeType,
			RouteColor:     row.get("route_color"),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("routes.txt: %w", err)
	}

	err = eachRecord(files["stops.txt"], func(row record) {
		lat, _ := strconv.ParseFloat(row.get("stop_lat"), 64)
		lon, _ := strconv.ParseFloat(row.get("stop_lon"), 64)
		locType, _ := strconv.Atoi(row.get("location_type"))
		data.Stops = append(data.Stops, Stop{
			StopID:        row.get("stop_id"),
			StopName:      row.get("stop_name"),
			StopLat:       lat,
			StopLon:       lon,
			LocationType:  locType,
			ParentStation: row.get("parent_station"),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("stops.txt: %w", err)
	}

	err = eachRecord(files["trips.txt"], func(row record) {
		directionID, _ := strconv.Atoi(row.get("direction_id"))
		data.Trips = append(data.Trips, Trip{
			RouteID:     row.get("route_id"),
			TripID:      row.get("trip_id"),
			DirectionID: directionID,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("trips.txt: %w", err)
	}

	err = eachRecord(files["stop_times.txt"], func(row record) {
		seq, _ := strconv.Atoi(row.get("stop_sequence"))
		data.StopTimes = append(data.StopTimes, StopTime{
			TripID:       row.get("trip_id"),
			StopID:       row.get("stop_id"),
			StopSequence: seq,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("stop_times.txt: %w", err)
	}

	log.Printf("GTFS parsed: %d routes, %d stops, %d trips, %d stop times",
		len(data.Routes), len(data.Stops), len(data.Trips), len(data.StopTimes))

	return data, nil
}

type record struct {
	fields []string
	idx    map[string]int
}

func (r record) get(field string) string {
	if i, ok := r.idx[field]; ok && i < len(r.fields) {
		return strings.TrimSpace(r.fields[i])
	}
	return ""
}

// eachRecord calls fn for every data row of a CSV file. Malformed rows are
// skipped.
func eachRecord(f *zip.File, fn func(record)) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	reader := csv.NewReader(rc)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return err
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	for {
		fields, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			continue
		}
		fn(record{fields: fields, idx: idx})
	}
}
