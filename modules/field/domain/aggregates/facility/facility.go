package facility

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("facility not found")
	ErrDuplicate = errors.New("facility already exists")
)

// ServicePrefix marks synthesized facilities used to record non-visit
// activity rows. Names carrying it never collide with real facilities and
// are hidden from default listings.
const ServicePrefix = "@service:"

type Facility struct {
	id        uuid.UUID
	name      string
	address   string
	latitude  float64
	longitude float64
	hasCoords bool
	verified  bool
	createdAt time.Time
	updatedAt time.Time
}

func New(name, address string) Facility {
	return Facility{
		name:    strings.TrimSpace(name),
		address: strings.TrimSpace(address),
	}
}

// NewService synthesizes the facility holding activity rows of the given
// source kind.
func NewService(kind string) Facility {
	return Facility{name: ServicePrefix + strings.TrimSpace(kind)}
}

func Hydrate(
	id uuid.UUID,
	name string,
	address string,
	latitude, longitude float64,
	hasCoords bool,
	verified bool,
	createdAt time.Time,
	updatedAt time.Time,
) Facility {
	return Facility{
		id:        id,
		name:      name,
		address:   address,
		latitude:  latitude,
		longitude: longitude,
		hasCoords: hasCoords,
		verified:  verified,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (f Facility) ID() uuid.UUID        { return f.id }
func (f Facility) Name() string         { return f.name }
func (f Facility) Address() string      { return f.address }
func (f Facility) Latitude() float64    { return f.latitude }
func (f Facility) Longitude() float64   { return f.longitude }
func (f Facility) HasCoords() bool      { return f.hasCoords }
func (f Facility) Verified() bool       { return f.verified }
func (f Facility) CreatedAt() time.Time { return f.createdAt }
func (f Facility) UpdatedAt() time.Time { return f.updatedAt }
func (f Facility) IsZero() bool         { return f.id == uuid.Nil && f.name == "" }

func (f Facility) IsService() bool {
	return strings.HasPrefix(f.name, ServicePrefix)
}

func (f Facility) WithCoords(lat, lon float64) Facility {
	f.latitude = lat
	f.longitude = lon
	f.hasCoords = true
	return f
}

func (f Facility) WithVerified(verified bool) Facility {
	f.verified = verified
	return f
}
