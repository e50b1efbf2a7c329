// Package seed loads a subway network description from YAML and applies it
// through the network service.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mini-rodalies-3d/subway/internal/subway"
)

// Network is a complete network description. Stations and segment ends are
// referenced by name.
type Network struct {
	Stations []string `yaml:"stations"`
	Lines    []Line   `yaml:"lines"`
}

// Line is one line with its segments in travel order
type Line struct {
	Name     string    `yaml:"name"`
	Color    string    `yaml:"color,omitempty"`
	Segments []Segment `yaml:"segments"`
}

// Segment connects two named stations
type Segment struct {
	Up       string `yaml:"up"`
	Down     string `yaml:"down"`
	Distance int    `yaml:"distance"`
}

// Result summarizes what Apply changed
type Result struct {
	StationsCreated int
	StationsReused  int
	LinesCreated    int
	LinesSkipped    int
}

// Service is the subset of subway.Service used to apply a network
type Service interface {
	ListStations(ctx context.Context) ([]subway.Station, error)
	CreateStation(ctx context.Context, name string) (subway.Station, error)
	ListLines(ctx context.Context) ([]*subway.Line, error)
	CreateLine(ctx context.Context, name, color string, upID, downID int64, distance int) (*subway.Line, error)
	AddSegment(ctx context.Context, lineID, upID, downID int64, distance int) (*subway.Line, error)
	DeleteLine(ctx context.Context, id int64) error
}

// LoadFile reads a YAML network file
func LoadFile(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a YAML network and validates it
func Decode(r io.Reader) (*Network, error) {
	var n Network
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&n); err != nil {
		if errors.Is(err, io.EOF) {
			return &Network{}, nil
		}
		return nil, fmt.Errorf("failed to decode seed: %w", err)
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return &n, nil
}

// Encode writes the network as YAML
func (n *Network) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return fmt.Errorf("failed to encode seed: %w", err)
	}
	return enc.Close()
}

// Validate checks that every line has segments and only references
// declared stations
func (n *Network) Validate() error {
	declared := make(map[string]bool, len(n.Stations))
	for _, name := range n.Stations {
		name = strings.TrimSpace(name)
		if name == "" {
			return errors.New("seed: empty station name")
		}
		if declared[name] {
			return fmt.Errorf("seed: station %q declared twice", name)
		}
		declared[name] = true
	}

	for _, line := range n.Lines {
		if strings.TrimSpace(line.Name) == "" {
			return errors.New("seed: line without name")
		}
		if len(line.Segments) == 0 {
			return fmt.Errorf("seed: line %q has no segments", line.Name)
		}
		for _, seg := range line.Segments {
			for _, name := range []string{seg.Up, seg.Down} {
				if !declared[strings.TrimSpace(name)] {
					return fmt.Errorf("seed: line %q references unknown station %q", line.Name, name)
				}
			}
		}
	}
	return nil
}

// Apply creates the network's stations and lines. Stations that already exist
// by name are reused and lines whose name is taken are skipped, so applying
// the same network twice is harmless.
func Apply(ctx context.Context, svc Service, n *Network) (Result, error) {
	var res Result

	existing, err := svc.ListStations(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to list stations: %w", err)
	}
	ids := make(map[string]int64, len(existing)+len(n.Stations))
	for _, st := range existing {
		ids[st.Name] = st.ID
	}

	for _, name := range n.Stations {
		name = strings.TrimSpace(name)
		if _, ok := ids[name]; ok {
			res.StationsReused++
			continue
		}
		st, err := svc.CreateStation(ctx, name)
		if err != nil {
			return res, fmt.Errorf("failed to create station %q: %w", name, err)
		}
		ids[name] = st.ID
		res.StationsCreated++
	}

	lines, err := svc.ListLines(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to list lines: %w", err)
	}
	taken := make(map[string]bool, len(lines))
	for _, l := range lines {
		taken[l.Name] = true
	}

	for _, line := range n.Lines {
		if taken[line.Name] {
			log.Printf("Line %s already exists, skipping", line.Name)
			res.LinesSkipped++
			continue
		}

		if err := checkLine(line, ids); err != nil {
			return res, err
		}

		if err := applyLine(ctx, svc, line, ids); err != nil {
			return res, err
		}

		taken[line.Name] = true
		res.LinesCreated++
		log.Printf("Created line %s with %d segments", line.Name, len(line.Segments))
	}

	return res, nil
}

// checkLine builds the line in memory so a rule violation is found before
// anything is written
func checkLine(line Line, ids map[string]int64) error {
	station := func(name string) subway.Station {
		name = strings.TrimSpace(name)
		return subway.Station{ID: ids[name], Name: name}
	}

	first := line.Segments[0]
	draft, err := subway.NewLine(0, line.Name, line.Color, station(first.Up), station(first.Down), first.Distance)
	if err != nil {
		return fmt.Errorf("line %s segment %s-%s: %w", line.Name, first.Up, first.Down, err)
	}
	for _, seg := range line.Segments[1:] {
		if err := draft.Segments.Add(station(seg.Up), station(seg.Down), seg.Distance); err != nil {
			return fmt.Errorf("line %s segment %s-%s: %w", line.Name, seg.Up, seg.Down, err)
		}
	}
	return nil
}

// applyLine creates the line and its remaining segments. A line that fails
// part way is deleted again so a later run does not skip it as existing.
func applyLine(ctx context.Context, svc Service, line Line, ids map[string]int64) error {
	first := line.Segments[0]
	created, err := svc.CreateLine(ctx, line.Name, line.Color,
		ids[strings.TrimSpace(first.Up)], ids[strings.TrimSpace(first.Down)], first.Distance)
	if err != nil {
		return fmt.Errorf("line %s: %w", line.Name, err)
	}

	for _, seg := range line.Segments[1:] {
		_, err := svc.AddSegment(ctx, created.ID,
			ids[strings.TrimSpace(seg.Up)], ids[strings.TrimSpace(seg.Down)], seg.Distance)
		if err == nil {
			continue
		}
		if delErr := svc.DeleteLine(ctx, created.ID); delErr != nil {
			log.Printf("Failed to roll back line %s: %v", line.Name, delErr)
		}
		return fmt.Errorf("line %s segment %s-%s: %w", line.Name, seg.Up, seg.Down, err)
	}
	return nil
}
