package nearby

const (
	SourceOpenStreetMap = "openstreetmap"
	SourceSample        = "sample"
)

// Tags is the free-form key/value mapping Overpass attaches to an element.
type Tags map[string]string

func (t Tags) first(keys ...string) string {
	for _, k := range keys {
		if v, ok := t[k]; ok && v != "" {
			return v
		}
	}
	return ""
}

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Element is one Overpass result. Nodes carry lat/lon directly, ways and
// relations expose a computed centroid under center.
type Element struct {
	Type   string      `json:"type"`
	ID     int64       `json:"id"`
	Lat    *float64    `json:"lat,omitempty"`
	Lon    *float64    `json:"lon,omitempty"`
	Center *Coordinate `json:"center,omitempty"`
	Tags   Tags        `json:"tags,omitempty"`
}

// coordinate resolves the element position, preferring direct lat/lon.
func (e Element) coordinate() (Coordinate, bool) {
	if e.Lat != nil && e.Lon != nil {
		return Coordinate{Lat: *e.Lat, Lon: *e.Lon}, true
	}
	if e.Center != nil {
		return *e.Center, true
	}
	return Coordinate{}, false
}

// Dentist is the normalized transient view over an external record. It is
// recomputed per query; when the user books one, its fields seed a persisted
// doctor.
type Dentist struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	Phone                string  `json:"phone"`
	Address              string  `json:"address"`
	Speciality           string  `json:"speciality"`
	ImageURL             string  `json:"imageUrl"`
	Bio                  string  `json:"bio"`
	Distance             string  `json:"distance"` // km, two decimals
	Rating               float64 `json:"rating"`
	Latitude             float64 `json:"latitude"`
	Longitude            float64 `json:"longitude"`
	Website              string  `json:"website,omitempty"`
	OpeningHours         string  `json:"openingHours"`
	Email                string  `json:"email,omitempty"`
	WheelchairAccessible bool    `json:"wheelchairAccessible"`
	ParkingAvailable     bool    `json:"parkingAvailable"`
}

type Result struct {
	Dentists []Dentist `json:"dentists"`
	Source   string    `json:"source"`
	Count    int       `json:"count,omitempty"`
	Message  string    `json:"message,omitempty"`
}
