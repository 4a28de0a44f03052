package models

// CatalogResponse describes every selectable value, in model index order
type CatalogResponse struct {
	Order        string              `json:"order"`
	Locations    []string            `json:"locations"`
	SubLocations map[string][]string `json:"sublocations"`
	Seasons      []string            `json:"seasons"`
	Crops        []string            `json:"crops"`
	Ranges       map[string]Range    `json:"ranges"`
}

// SubLocationsResponse lists the sub-locations of one location
type SubLocationsResponse struct {
	Location     string   `json:"location"`
	SubLocations []string `json:"sublocations"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}
