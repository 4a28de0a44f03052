package catalog

// builtinSpec is the catalog the reference model was trained against.
// Label spelling and case are significant.
var builtinSpec = Spec{
	Locations: []LocationSpec{
		{Name: "Andhra Pradesh", SubLocations: []string{"ANANTAPUR", "CHITTOOR", "EAST GODAVARI", "GUNTUR", "KADAPA"}},
		{Name: "Assam", SubLocations: []string{"Baksa", "Barpeta"}},
		{Name: "Bihar", SubLocations: []string{"Araria", "Arwal"}},
		{Name: "Chhattisgarh", SubLocations: []string{"Balod", "Bastar"}},
		{Name: "Delhi", SubLocations: []string{"Central Delhi", "East Delhi"}},
	},
	Seasons: []string{"Kharif", "Rabi", "Whole Year", "Summer", "Winter", "Autumn"},
	Crops:   []string{"Rice", "Wheat", "Maize", "Barley", "Soybean", "Banana", "Sugarcane", "Turmeric"},
}

// Builtin returns the built-in catalog.
func Builtin() *Catalog {
	c, err := New(builtinSpec)
	if err != nil {
		panic("catalog: built-in spec is invalid: " + err.Error())
	}
	return c
}
