package nearby

// SampleDentists is the fixed fallback roster shown when the external source
// is unreachable or returns nothing. Entries are deterministic so repeat
// calls render identically; positions are offset from the query point so the
// map view still has pins to draw.
func SampleDentists(lat, lon float64) []Dentist {
	return []Dentist{
		{
			ID:           "sample-1",
			Name:         "SmileCare Dental Clinic",
			Phone:        "+1 (555) 123-4567",
			Address:      "123 Main Street, Your City",
			Speciality:   "General Dentistry",
			ImageURL:     defaultImageURL,
			Bio:          "Comprehensive dental care with state-of-the-art technology and experienced professionals.",
			Distance:     "2.50",
			Rating:       4.8,
			Latitude:     lat + 0.01,
			Longitude:    lon + 0.01,
			OpeningHours: "Mon-Fri 9:00-18:00, Sat 9:00-14:00",
		},
		{
			ID:           "sample-2",
			Name:         "Bright Smile Dentistry",
			Phone:        "+1 (555) 234-5678",
			Address:      "456 Oak Avenue, Your City",
			Speciality:   "Cosmetic Dentistry",
			ImageURL:     defaultImageURL,
			Bio:          "Specializing in cosmetic dentistry, teeth whitening, and smile makeovers.",
			Distance:     "3.50",
			Rating:       4.7,
			Latitude:     lat + 0.02,
			Longitude:    lon - 0.01,
			OpeningHours: "Mon-Fri 8:00-17:00",
		},
		{
			ID:           "sample-3",
			Name:         "Family Dental Care",
			Phone:        "+1 (555) 345-6789",
			Address:      "789 Elm Street, Your City",
			Speciality:   "Family & Pediatric Dentistry",
			ImageURL:     defaultImageURL,
			Bio:          "Family-friendly dental practice providing care for patients of all ages.",
			Distance:     "3.00",
			Rating:       4.9,
			Latitude:     lat - 0.01,
			Longitude:    lon + 0.02,
			OpeningHours: "Mon-Fri 9:00-17:00, Sat 10:00-15:00",
		},
		{
			ID:           "sample-4",
			Name:         "Advanced Dental Solutions",
			Phone:        "+1 (555) 456-7890",
			Address:      "321 Pine Road, Your City",
			Speciality:   "Orthodontics",
			ImageURL:     defaultImageURL,
			Bio:          "Expert orthodontic care including braces, aligners, and teeth straightening.",
			Distance:     "4.00",
			Rating:       4.6,
			Latitude:     lat + 0.015,
			Longitude:    lon - 0.015,
			OpeningHours: "Tue-Sat 9:00-18:00",
		},
		{
			ID:           "sample-5",
			Name:         "Gentle Dental Group",
			Phone:        "+1 (555) 567-8901",
			Address:      "654 Maple Drive, Your City",
			Speciality:   "General Dentistry",
			ImageURL:     defaultImageURL,
			Bio:          "Gentle, patient-focused dental care with modern amenities and comfortable environment.",
			Distance:     "4.50",
			Rating:       4.5,
			Latitude:     lat - 0.02,
			Longitude:    lon - 0.02,
			OpeningHours: "Mon-Fri 8:30-17:30",
		},
	}
}
