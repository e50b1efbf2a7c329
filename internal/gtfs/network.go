package gtfs

import (
	"log"
	"math"
	"sort"
	"strings"

	"github.com/mini-rodalies-3d/subway/internal/seed"
)

const earthRadiusMeters = 6371000

// Haversine calculates the distance between two points in meters
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	deltaPhi := (lat2 - lat1) * math.Pi / 180
	deltaLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// BuildOptions filters which routes become lines
type BuildOptions struct {
	// RouteTypes limits the import to these GTFS route types; empty means all
	RouteTypes []int
}

// BuildNetwork derives a network from a GTFS feed. Each route becomes one line
// following its longest direction-0 trip. Platforms are folded into their
// parent station and consecutive stops are joined by segments whose distance
// is the great-circle distance in meters (at least 1).
func BuildNetwork(data *Data, opts BuildOptions) *seed.Network {
	stops := make(map[string]Stop, len(data.Stops))
	for _, s := range data.Stops {
		stops[s.StopID] = s
	}

	tripsByRoute := make(map[string][]Trip)
	for _, t := range data.Trips {
		tripsByRoute[t.RouteID] = append(tripsByRoute[t.RouteID], t)
	}

	stopTimesByTrip := make(map[string][]StopTime)
	for _, st := range data.StopTimes {
		stopTimesByTrip[st.TripID] = append(stopTimesByTrip[st.TripID], st)
	}

	wanted := make(map[int]bool, len(opts.RouteTypes))
	for _, rt := range opts.RouteTypes {
		wanted[rt] = true
	}

	network := &seed.Network{}
	declared := make(map[string]bool)
	usedNames := make(map[string]bool)

	routes := append([]Route(nil), data.Routes...)
	sort.Slice(routes, func(i, j int) bool { return routes[i].RouteID < routes[j].RouteID })

	for _, route := range routes {
		if len(wanted) > 0 && !wanted[route.RouteType] {
			continue
		}

		trip := longestTrip(tripsByRoute[route.RouteID], stopTimesByTrip)
		if trip == "" {
			log.Printf("Route %s has no usable trips, skipping", route.RouteID)
			continue
		}

		stations := tripStations(stopTimesByTrip[trip], stops)
		if len(stations) < 2 {
			log.Printf("Route %s has fewer than two stations, skipping", route.RouteID)
			continue
		}

		name := lineName(route, usedNames)
		usedNames[name] = true

		line := seed.Line{Name: name, Color: lineColor(route.RouteColor)}
		for i := 1; i < len(stations); i++ {
			up, down := stations[i-1], stations[i]
			distance := int(math.Round(Haversine(up.StopLat, up.StopLon, down.StopLat, down.StopLon)))
			if distance < 1 {
				distance = 1
			}
			line.Segments = append(line.Segments, seed.Segment{Up: up.StopName, Down: down.StopName, Distance: distance})
		}

		for _, st := range stations {
			if !declared[st.StopName] {
				declared[st.StopName] = true
				network.Stations = append(network.Stations, st.StopName)
			}
		}
		network.Lines = append(network.Lines, line)
	}

	return network
}

// longestTrip picks the direction-0 trip with the most stops, falling back to
// any direction when a route only runs one way
func longestTrip(trips []Trip, stopTimes map[string][]StopTime) string {
	best, bestLen := "", 0
	for _, pass := range []bool{true, false} {
		for _, t := range trips {
			if pass && t.DirectionID != 0 {
				continue
			}
			if n := len(stopTimes[t.TripID]); n > bestLen || (n == bestLen && n > 0 && t.TripID < best) {
				best, bestLen = t.TripID, n
			}
		}
		if best != "" {
			return best
		}
	}
	return best
}

// tripStations resolves a trip's stops to stations in travel order. The walk
// stops at the first station already visited so the result never loops back.
func tripStations(stopTimes []StopTime, stops map[string]Stop) []Stop {
	ordered := append([]StopTime(nil), stopTimes...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].StopSequence < ordered[j].StopSequence })

	var stations []Stop
	seen := make(map[string]bool)
	for _, st := range ordered {
		stop, ok := stops[st.StopID]
		if !ok {
			continue
		}
		if parent, ok := stops[stop.ParentStation]; ok {
			stop = parent
		}
		stop.StopName = strings.TrimSpace(stop.StopName)
		if stop.StopName == "" {
			stop.StopName = stop.StopID
		}

		if n := len(stations); n > 0 && stations[n-1].StopName == stop.StopName {
			continue
		}
		if seen[stop.StopName] {
			break
		}
		seen[stop.StopName] = true
		stations = append(stations, stop)
	}
	return stations
}

func lineName(route Route, used map[string]bool) string {
	name := route.RouteShortName
	if name == "" {
		name = route.RouteLongName
	}
	if name == "" || used[name] {
		name = route.RouteID
	}
	return name
}

func lineColor(color string) string {
	if color == "" {
		return ""
	}
	return "#" + strings.TrimPrefix(strings.ToUpper(color), "#")
}
