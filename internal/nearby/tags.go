package nearby

import (
	"strconv"
	"strings"
)

const (
	placeholderPhone   = "+1 (555) 000-0000"
	placeholderAddress = "Address available on request"
	defaultSpeciality  = "General Dentistry"
	defaultHours       = "Mon-Fri 9:00-17:00"
	defaultImageURL    = "/logo.png"
)

// Each normalized field has a fixed priority-fallback chain over the source
// tagging variants.

func phoneFromTags(t Tags) string {
	if v := t.first("phone", "contact:phone", "phone:mobile"); v != "" {
		return v
	}
	return placeholderPhone
}

func addressFromTags(t Tags) string {
	parts := make([]string, 0, 5)
	for _, k := range []string{"addr:housenumber", "addr:street", "addr:city", "addr:state", "addr:postcode"} {
		if v := t[k]; v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}
	if v := t["addr:full"]; v != "" {
		return v
	}
	return placeholderAddress
}

func specialityFromTags(t Tags) string {
	if v := t.first("speciality", "healthcare:speciality", "dentist:speciality"); v != "" {
		return v
	}
	return defaultSpeciality
}

func websiteFromTags(t Tags) string {
	return t.first("website", "contact:website", "contact:url")
}

func emailFromTags(t Tags) string {
	return t.first("email", "contact:email")
}

// bioFromTags prefers an explicit description, otherwise synthesizes one from
// the name, speciality and boolean service tags.
func bioFromTags(t Tags) string {
	if v := t["description"]; v != "" {
		return v
	}

	name := t["name"]
	if name == "" {
		name = "This dental practice"
	}
	speciality := t.first("speciality", "healthcare:speciality")
	if speciality == "" {
		speciality = "general dentistry"
	}

	var services []string
	if t["dentist:orthodontics"] == "yes" {
		services = append(services, "orthodontics")
	}
	if t["dentist:implants"] == "yes" {
		services = append(services, "dental implants")
	}
	if t["dentist:cosmetic"] == "yes" {
		services = append(services, "cosmetic dentistry")
	}
	if t["dentist:pediatric"] == "yes" {
		services = append(services, "pediatric care")
	}

	var b strings.Builder
	b.WriteString(name)
	b.WriteString(" specializes in ")
	b.WriteString(speciality)
	if len(services) > 0 {
		b.WriteString(" and offers ")
		b.WriteString(strings.Join(services, ", "))
	}
	b.WriteString(". We provide professional dental care with experienced staff and modern equipment.")
	if t["wheelchair"] == "yes" {
		b.WriteString(" Wheelchair accessible facility.")
	}
	return b.String()
}

var dayAbbrevs = strings.NewReplacer(
	"Mo", "Mon",
	"Tu", "Tue",
	"We", "Wed",
	"Th", "Thu",
	"Fr", "Fri",
	"Sa", "Sat",
	"Su", "Sun",
)

// openingHoursFromTags expands the source's two-letter day abbreviations,
// e.g. "Mo-Fr 09:00-17:00" becomes "Mon-Fri 09:00-17:00".
func openingHoursFromTags(t Tags) string {
	hours := t["opening_hours"]
	if hours == "" {
		return defaultHours
	}
	return dayAbbrevs.Replace(hours)
}

// ratingFromTags returns a tagged rating when it parses into [0,5], otherwise
// a value in [4.2,5.0) drawn from rng and rounded to one decimal.
func ratingFromTags(t Tags, rng func() float64) float64 {
	if v := t["rating"]; v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil && r >= 0 && r <= 5 {
			return r
		}
	}
	return round1(4.2 + rng()*0.8)
}

func round1(v float64) float64 {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	r, _ := strconv.ParseFloat(s, 64)
	return r
}
