// Package dashboard keeps the UI selection state: which site is shown and
// which modal, if any, is open.
package dashboard

import (
	"sync"
	"time"

	"codeberg.org/mutker/ventsim/internal/camera"
	"codeberg.org/mutker/ventsim/internal/errors"
	"codeberg.org/mutker/ventsim/internal/site"
	"codeberg.org/mutker/ventsim/internal/simulator"
)

const (
	ErrUnknownCamera = errors.ErrorCode("dashboard_unknown_camera")
	ErrNotOnSite     = errors.ErrorCode("dashboard_not_on_active_site")
	ErrNoCameraOpen  = errors.ErrorCode("dashboard_no_camera_open")
)

// ModalKind names the open modal
type ModalKind string

const (
	ModalNone   ModalKind = "none"
	ModalFan    ModalKind = "fan"
	ModalCamera ModalKind = "camera"
)

// channels shown as tabs inside every camera modal
var cameraChannels = []string{"Camera 1", "Camera 2"}

// State is a snapshot of the selection
type State struct {
	Site      int       `json:"site"`
	SiteName  string    `json:"site_name"`
	Modal     ModalKind `json:"modal"`
	Target    string    `json:"target,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Dashboard guarantees that at most one modal is open at a time. Closing a
// fan modal closes the fan's simulator view.
type Dashboard struct {
	engine  *simulator.Engine
	catalog site.Catalog
	rnd     camera.Rand
	now     func() time.Time

	mu      sync.Mutex
	site    int
	modal   ModalKind
	target  string
	feed    *camera.Feed
	updated time.Time
}

func New(engine *simulator.Engine, rnd camera.Rand, now func() time.Time) *Dashboard {
	return &Dashboard{
		engine:  engine,
		catalog: engine.Config().Catalog,
		rnd:     rnd,
		now:     now,
		modal:   ModalNone,
		updated: now(),
	}
}

// Catalog returns the sites the dashboard switches between
func (d *Dashboard) Catalog() site.Catalog {
	return d.catalog
}

func (d *Dashboard) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.stateLocked()
}

func (d *Dashboard) stateLocked() State {
	return State{
		Site:      d.site,
		SiteName:  d.catalog[d.site].Name,
		Modal:     d.modal,
		Target:    d.target,
		UpdatedAt: d.updated,
	}
}

// SelectSite switches the floor plan and closes any open modal
func (d *Dashboard) SelectSite(i int) (State, error) {
	if _, err := d.catalog.Get(i); err != nil {
		return State{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.closeLocked(); err != nil {
		return State{}, err
	}
	d.site = i
	d.updated = d.now()

	return d.stateLocked(), nil
}

// OpenFan opens the detail modal of a fan on the active site
func (d *Dashboard) OpenFan(fanID string) (simulator.View, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if owner := d.catalog.SiteOfFan(fanID); owner != d.site {
		if owner < 0 {
			return simulator.View{}, errors.New().WithData(simulator.ErrUnknownFan, fanID)
		}
		return simulator.View{}, errors.New().WithData(ErrNotOnSite, fanID)
	}

	if err := d.closeLocked(); err != nil {
		return simulator.View{}, err
	}

	v, err := d.engine.OpenView(fanID)
	if err != nil {
		return simulator.View{}, err
	}
	d.modal = ModalFan
	d.target = fanID
	d.updated = d.now()

	return v, nil
}

// OpenCamera opens the camera modal of a camera on the active site
func (d *Dashboard) OpenCamera(cameraID string) (camera.Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if owner := d.catalog.SiteOfCamera(cameraID); owner != d.site {
		if owner < 0 {
			return camera.Frame{}, errors.New().WithData(ErrUnknownCamera, cameraID)
		}
		return camera.Frame{}, errors.New().WithData(ErrNotOnSite, cameraID)
	}

	if err := d.closeLocked(); err != nil {
		return camera.Frame{}, err
	}

	d.feed = camera.NewFeed(cameraID, cameraChannels, d.rnd, d.now)
	d.modal = ModalCamera
	d.target = cameraID
	d.updated = d.now()

	return d.feed.Frame(), nil
}

// SelectChannel switches the tab of the camera modal, which must be open on
// cameraID
func (d *Dashboard) SelectChannel(cameraID string, channel int) (camera.Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.modal != ModalCamera || d.target != cameraID {
		return camera.Frame{}, errors.New().WithData(ErrNoCameraOpen, cameraID)
	}
	if err := d.feed.Select(channel); err != nil {
		return camera.Frame{}, err
	}

	return d.feed.Frame(), nil
}

// CameraFrame returns the current frame of the open camera modal
func (d *Dashboard) CameraFrame(cameraID string) (camera.Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.modal != ModalCamera || d.target != cameraID {
		return camera.Frame{}, errors.New().WithData(ErrNoCameraOpen, cameraID)
	}

	return d.feed.Frame(), nil
}

// CloseModal closes whatever modal is open
func (d *Dashboard) CloseModal() (State, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.closeLocked(); err != nil {
		return State{}, err
	}
	d.updated = d.now()

	return d.stateLocked(), nil
}

func (d *Dashboard) closeLocked() error {
	if d.modal == ModalFan {
		if err := d.engine.CloseView(d.target); err != nil {
			return err
		}
	}

	d.modal = ModalNone
	d.target = ""
	d.feed = nil

	return nil
}

// Close releases the open modal, if any
func (d *Dashboard) Close() error {
	_, err := d.CloseModal()
	return err
}
