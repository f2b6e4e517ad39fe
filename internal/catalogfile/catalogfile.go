// Package catalogfile loads song catalogs from YAML for offline generation.
package catalogfile

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"bandsetlist/internal/setlist"
	"bandsetlist/internal/validation"
	"bandsetlist/shared/go/models"
)

// Catalog is the on-disk layout:
//
//	songs:
//	  - title: Jolene
//	    artist: Dolly Parton
//	    genre: Country
//	    duration: "2:42"
type Catalog struct {
	Songs []Entry `yaml:"songs" validate:"required,min=1,dive"`
}

// Entry is a single song in a catalog file.
type Entry struct {
	Title    string `yaml:"title" json:"title" validate:"required"`
	Artist   string `yaml:"artist" json:"artist" validate:"required"`
	Genre    string `yaml:"genre" json:"genre" validate:"genre"`
	Duration string `yaml:"duration" json:"duration" validate:"required,songduration"`
}

// Load reads and validates the catalog at path.
func Load(path string) ([]models.Song, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates a YAML catalog. Songs get positional IDs.
func Parse(raw []byte) ([]models.Song, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	for i := range c.Songs {
		e := &c.Songs[i]
		e.Title = strings.TrimSpace(e.Title)
		e.Artist = strings.TrimSpace(e.Artist)
		e.Genre = strings.TrimSpace(e.Genre)
		e.Duration = strings.TrimSpace(e.Duration)
		if e.Genre == "" {
			e.Genre = setlist.DefaultGenre
		}
	}

	if err := validation.Struct(validation.New(), c); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	songs := make([]models.Song, len(c.Songs))
	for i, e := range c.Songs {
		songs[i] = models.Song{
			ID:       fmt.Sprintf("song-%d", i+1),
			Title:    e.Title,
			Artist:   e.Artist,
			Genre:    e.Genre,
			Duration: e.Duration,
		}
	}
	return songs, nil
}
