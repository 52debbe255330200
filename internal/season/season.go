package season

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/versus-league/playoff-mcp-server/internal/standings"
	"gopkg.in/yaml.v3"
)

// EmbeddedSource is reported as the source of the built-in season
const EmbeddedSource = "embedded"

//go:embed default_season.yaml
var defaultSeason []byte

// searchPaths are tried in order when no season file is given explicitly
var searchPaths = []string{
	"configs/season.yaml",
	"configs/season.json",
	"../configs/season.yaml",
	"../configs/season.json",
	"../../configs/season.yaml",
	"../../configs/season.json",
}

// Season is the source data of one league: records, head-to-head matrix
// and the schedule of remaining matches
type Season struct {
	Name       string               `json:"name" yaml:"name"`
	Slots      int                  `json:"slots" yaml:"slots"`
	Teams      []standings.Team     `json:"teams" yaml:"teams"`
	HeadToHead standings.HeadToHead `json:"head_to_head" yaml:"head_to_head"`
	Matches    []standings.Match    `json:"matches" yaml:"matches"`

	snapshot *standings.Snapshot
	calc     *standings.Calculator
}

// Load reads and validates a season file. Files ending in .json are decoded
// as JSON, everything else as YAML.
func Load(path string) (*Season, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read season file %s: %w", path, err)
	}

	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}

	s, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load season from %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a season document in the given format
// ("json" or "yaml")
func Parse(data []byte, format string) (*Season, error) {
	var s Season
	switch format {
	case "json":
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse season: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse season: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported season format %q", format)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Default returns the built-in season
func Default() (*Season, error) {
	return Parse(defaultSeason, "yaml")
}

// Discover loads the season from path, or from the first search path that
// exists when path is empty, falling back to the built-in season. It also
// returns where the season came from.
func Discover(path string) (*Season, string, error) {
	if path != "" {
		s, err := Load(path)
		return s, path, err
	}

	for _, candidate := range searchPaths {
		if _, err := os.Stat(candidate); err == nil {
			s, err := Load(candidate)
			return s, candidate, err
		}
	}

	s, err := Default()
	return s, EmbeddedSource, err
}

// Validate checks the season once so that no computation has to: team ids,
// head-to-head symmetry, match participants and winners, slot count
func (s *Season) Validate() error {
	if s.Slots == 0 {
		s.Slots = standings.DefaultSlots
	}

	calc, err := standings.NewCalculator(s.Slots)
	if err != nil {
		return err
	}

	snapshot, err := standings.NewSnapshot(s.Teams, s.HeadToHead)
	if err != nil {
		return err
	}
	if err := calc.CheckSnapshot(snapshot); err != nil {
		return err
	}

	seen := make(map[int]bool, len(s.Matches))
	for _, m := range s.Matches {
		if err := m.Validate(snapshot); err != nil {
			return err
		}
		if seen[m.ID] {
			return &standings.ValidationError{
				Field:   fmt.Sprintf("matches[%d]", m.ID),
				Message: "duplicate match id",
				Err:     standings.ErrInvalidMatch,
			}
		}
		seen[m.ID] = true
		if m.Locked && !m.Decided() {
			return &standings.ValidationError{
				Field:   fmt.Sprintf("matches[%d]", m.ID),
				Message: "a locked match needs an official winner",
				Err:     standings.ErrInvalidMatch,
			}
		}
	}

	s.snapshot = snapshot
	s.calc = calc
	return nil
}

// Snapshot returns the validated base snapshot
func (s *Season) Snapshot() *standings.Snapshot {
	return s.snapshot
}

// Calculator returns a standings calculator for the season's slot count
func (s *Season) Calculator() *standings.Calculator {
	return s.calc
}

// Schedule returns a copy of the season's matches
func (s *Season) Schedule() []standings.Match {
	return append([]standings.Match(nil), s.Matches...)
}

// Match looks a scheduled match up by id
func (s *Season) Match(id int) (standings.Match, bool) {
	for _, m := range s.Matches {
		if m.ID == id {
			return m, true
		}
	}
	return standings.Match{}, false
}
