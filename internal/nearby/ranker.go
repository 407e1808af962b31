package nearby

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

const resultLimit = 20

// DentistSource abstracts the Overpass client for tests.
type DentistSource interface {
	FindDentists(ctx context.Context, lat, lon float64, radiusM int) ([]Element, error)
}

// Service ranks nearby dentists by great-circle distance from the query
// point. It never surfaces upstream failure: an unreachable or empty source
// degrades to the fixed sample set so the caller always has a well-formed
// result. Callers must check Source before treating entries as real.
type Service struct {
	source   DentistSource
	cache    Cache
	cacheTTL time.Duration
	rng      func() float64
	log      zerolog.Logger
}

// NewService wires the ranker. cache may be nil; rng may be nil to use the
// global math/rand source.
func NewService(source DentistSource, cache Cache, cacheTTL time.Duration, log zerolog.Logger, rng func() float64) *Service {
	if rng == nil {
		rng = rand.Float64
	}
	return &Service{
		source:   source,
		cache:    cache,
		cacheTTL: cacheTTL,
		rng:      rng,
		log:      log,
	}
}

func (s *Service) Nearby(ctx context.Context, lat, lon float64, radiusM int) Result {
	key := cacheKey(lat, lon, radiusM)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil && len(raw) > 0 {
			var cached Result
			if err := json.Unmarshal(raw, &cached); err == nil && len(cached.Dentists) > 0 {
				return cached
			}
		}
	}

	elements, err := s.source.FindDentists(ctx, lat, lon, radiusM)
	if err != nil {
		s.log.Warn().Err(err).Float64("lat", lat).Float64("lon", lon).
			Msg("overpass lookup failed, falling back to sample dentists")
		return Result{
			Dentists: SampleDentists(lat, lon),
			Source:   SourceSample,
			Message:  "Error fetching real data. Showing sample dentists.",
		}
	}

	dentists := s.rank(lat, lon, elements)
	if len(dentists) == 0 {
		return Result{
			Dentists: SampleDentists(lat, lon),
			Source:   SourceSample,
			Message:  "No dentists found nearby. Showing sample data.",
		}
	}

	result := Result{
		Dentists: dentists,
		Source:   SourceOpenStreetMap,
		Count:    len(dentists),
	}

	if s.cache != nil {
		if raw, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
				s.log.Debug().Err(err).Msg("nearby cache write failed")
			}
		}
	}

	return result
}

type rankedDentist struct {
	dentist Dentist
	km      float64
}

// rank normalizes qualifying elements, computes distance from the query
// point, sorts ascending and truncates. Elements without a name tag or a
// resolvable coordinate are excluded rather than emitted with a broken
// distance.
func (s *Service) rank(lat, lon float64, elements []Element) []Dentist {
	ranked := make([]rankedDentist, 0, len(elements))
	for _, el := range elements {
		if el.Tags == nil || el.Tags["name"] == "" {
			continue
		}
		coord, ok := el.coordinate()
		if !ok {
			continue
		}

		km := Haversine(lat, lon, coord.Lat, coord.Lon)
		ranked = append(ranked, rankedDentist{
			dentist: s.normalize(el, coord, km),
			km:      km,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].km < ranked[j].km
	})

	if len(ranked) > resultLimit {
		ranked = ranked[:resultLimit]
	}

	out := make([]Dentist, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.dentist)
	}
	return out
}

func (s *Service) normalize(el Element, coord Coordinate, km float64) Dentist {
	t := el.Tags
	return Dentist{
		ID:                   fmt.Sprintf("osm-%d", el.ID),
		Name:                 t["name"],
		Phone:                phoneFromTags(t),
		Address:              addressFromTags(t),
		Speciality:           specialityFromTags(t),
		ImageURL:             defaultImageURL,
		Bio:                  bioFromTags(t),
		Distance:             fmt.Sprintf("%.2f", km),
		Rating:               ratingFromTags(t, s.rng),
		Latitude:             coord.Lat,
		Longitude:            coord.Lon,
		Website:              websiteFromTags(t),
		OpeningHours:         openingHoursFromTags(t),
		Email:                emailFromTags(t),
		WheelchairAccessible: t["wheelchair"] == "yes",
		ParkingAvailable:     t["parking"] != "",
	}
}

func cacheKey(lat, lon float64, radiusM int) string {
	// Coordinates rounded to ~11m so nearby repeat queries share an entry.
	return fmt.Sprintf("nearby:v1:%.4f:%.4f:%d", lat, lon, radiusM)
}
