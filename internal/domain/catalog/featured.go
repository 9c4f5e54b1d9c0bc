package catalog

// FeaturedHospitals returns the partner hospitals shown on the home page
// before the admin console has added any.
func FeaturedHospitals() []*Hospital {
	return []*Hospital{
		{ID: "aiims", Name: "AIIMS", City: "New Delhi", Country: "India", Specialties: []string{"Cardiology", "Neurology"}},
		{ID: "apollo", Name: "Apollo", City: "Chennai", Country: "India", Specialties: []string{"Orthopedics", "Oncology"}},
		{ID: "fortis", Name: "Fortis MRI", City: "Gurugram", Country: "India", Specialties: []string{"Cardiology", "Gastroenterology"}},
		{ID: "medanta", Name: "Medanta", City: "Gurugram", Country: "India", Specialties: []string{"Nephrology", "Oncology"}},
		{ID: "cmc", Name: "CMC Vellore", City: "Vellore", Country: "India", Specialties: []string{"Cardiology", "Neurology"}},
		{ID: "max", Name: "Max Hospital", City: "New Delhi", Country: "India", Specialties: []string{"Cardiology", "Orthopedics"}},
	}
}
