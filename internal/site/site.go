// Package site describes the monitored objects: their fans and cameras.
package site

import (
	"codeberg.org/mutker/ventsim/internal/errors"
)

const (
	ErrEmptyCatalog = errors.ErrorCode("site_empty_catalog")
	ErrDuplicateID  = errors.ErrorCode("site_duplicate_id")
	ErrUnknownSite  = errors.ErrorCode("site_unknown")
)

// FanSpec is the initial state of a fan
type FanSpec struct {
	ID    string `mapstructure:"id" json:"id"`
	On    bool   `mapstructure:"on" json:"on"`
	Speed int    `mapstructure:"speed" json:"speed"`
}

// Site is one object shown as a floor plan
type Site struct {
	Name    string    `mapstructure:"name" json:"name"`
	Fans    []FanSpec `mapstructure:"fans" json:"fans"`
	Cameras []string  `mapstructure:"cameras" json:"cameras"`
}

// Catalog is the ordered list of sites
type Catalog []Site

func DefaultCatalog() Catalog {
	return Catalog{
		{
			Name: "Object 1 - Production hall",
			Fans: []FanSpec{
				{ID: "Fan 1-1", On: true, Speed: 2000},
				{ID: "Fan 1-2", On: false, Speed: 1500},
				{ID: "Fan 1-3", On: true, Speed: 2500},
			},
			Cameras: []string{"Camera 1-1", "Camera 1-2"},
		},
		{
			Name: "Object 2 - Office",
			Fans: []FanSpec{
				{ID: "Fan 2-1", On: true, Speed: 1800},
				{ID: "Fan 2-2", On: true, Speed: 2200},
				{ID: "Fan 2-3", On: false, Speed: 1000},
			},
			Cameras: []string{"Camera 2-1", "Camera 2-2"},
		},
	}
}

// Validate checks that the catalog is non-empty and that fan and camera
// IDs are unique across all sites
func (c Catalog) Validate() error {
	errFactory := errors.New()

	if len(c) == 0 {
		return errFactory.New(ErrEmptyCatalog)
	}

	seen := make(map[string]struct{})
	for _, s := range c {
		ids := make([]string, 0, len(s.Fans)+len(s.Cameras))
		for _, f := range s.Fans {
			ids = append(ids, f.ID)
		}
		ids = append(ids, s.Cameras...)

		for _, id := range ids {
			if _, ok := seen[id]; ok || id == "" {
				return errFactory.WithData(ErrDuplicateID, id)
			}
			seen[id] = struct{}{}
		}
	}

	return nil
}

// Get returns the site at index i
func (c Catalog) Get(i int) (Site, error) {
	if i < 0 || i >= len(c) {
		return Site{}, errors.New().WithData(ErrUnknownSite, i)
	}

	return c[i], nil
}

// SiteOfFan returns the index of the site owning fanID, or -1
func (c Catalog) SiteOfFan(fanID string) int {
	for i, s := range c {
		for _, f := range s.Fans {
			if f.ID == fanID {
				return i
			}
		}
	}

	return -1
}

// SiteOfCamera returns the index of the site owning cameraID, or -1
func (c Catalog) SiteOfCamera(cameraID string) int {
	for i, s := range c {
		for _, id := range s.Cameras {
			if id == cameraID {
				return i
			}
		}
	}

	return -1
}
