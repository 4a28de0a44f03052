package handlers

import (
	"encoding/json"
	"net/http"

	"yield-advisor/internal/features"
)

func jsonContent(schema interface{}) map[string]interface{} {
	return map[string]interface{}{
		"application/json": map[string]interface{}{"schema": schema},
	}
}

func ref(name string) map[string]string {
	return map[string]string{"$ref": "#/components/schemas/" + name}
}

func errorResponses(codes ...string) map[string]interface{} {
	descriptions := map[string]string{
		"400": "Invalid body, out-of-range reading or unknown category",
		"404": "Unknown location",
		"422": "Sub-location does not belong to the location",
		"503": "Yield predictor unavailable",
	}
	out := make(map[string]interface{}, len(codes))
	for _, c := range codes {
		out[c] = map[string]interface{}{
			"description": descriptions[c],
			"content":     jsonContent(ref("Error")),
		}
	}
	return out
}

func withOK(schema string, errs map[string]interface{}) map[string]interface{} {
	errs["200"] = map[string]interface{}{
		"description": "Successful response",
		"content":     jsonContent(ref(schema)),
	}
	return errs
}

func number(min, max float64) map[string]interface{} {
	return map[string]interface{}{"type": "number", "minimum": min, "maximum": max}
}

// OpenAPISpec returns the OpenAPI 3.0 specification for the Yield Advisor API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	str := map[string]string{"type": "string"}
	num := map[string]string{"type": "number"}

	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Yield Advisor API",
			"description": "Crop yield prediction and agronomic advisory service",
			"version":     "1.0.0",
			"contact": map[string]string{
				"name": "Yield Advisor Team",
			},
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/predict": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Predict crop yield",
					"description": "Encode the selection, assemble the " + features.Version + " feature vector, call the yield model and derive the advisory",
					"requestBody": map[string]interface{}{
						"required": true,
						"content":  jsonContent(ref("PredictionRequest")),
					},
					"responses": withOK("PredictionResponse", errorResponses("400", "422", "503")),
				},
			},
			"/api/advise": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Advise on a known yield",
					"description": "Run the advisory rules on a supplied yield without calling the model",
					"requestBody": map[string]interface{}{
						"required": true,
						"content":  jsonContent(ref("AdviseRequest")),
					},
					"responses": withOK("AdviseResponse", errorResponses("400")),
				},
			},
			"/api/catalog": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List selectable values",
					"description": "Locations, sub-locations, seasons and crops in model index order, plus plausible input ranges",
					"responses":   withOK("Catalog", map[string]interface{}{}),
				},
			},
			"/api/catalog/locations/{location}/sublocations": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "List the sub-locations of a location",
					"parameters": []map[string]interface{}{
						{
							"name":     "location",
							"in":       "path",
							"required": true,
							"schema":   str,
						},
					},
					"responses": withOK("SubLocations", errorResponses("404")),
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health check",
					"description": "Check if the API and its dependencies are up",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "API is healthy"},
						"503": map[string]interface{}{"description": "A dependency is unhealthy"},
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Prometheus metrics",
					"description": "Prometheus metrics endpoint for monitoring",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Prometheus metrics in text format",
							"content": map[string]interface{}{
								"text/plain": map[string]interface{}{"schema": str},
							},
						},
					},
				},
			},
		},
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"PredictionRequest": map[string]interface{}{
					"type":     "object",
					"required": []string{"location", "sublocation", "season", "crop", "crop_year", "temperature", "humidity", "soil_moisture", "area"},
					"properties": map[string]interface{}{
						"location":      str,
						"sublocation":   str,
						"season":        str,
						"crop":          str,
						"crop_year":     map[string]interface{}{"type": "integer", "minimum": 2000, "maximum": 3000},
						"temperature":   number(0, 50),
						"humidity":      number(0, 100),
						"soil_moisture": number(0, 100),
						"area": map[string]interface{}{
							"type": "number", "minimum": 0.1, "maximum": 1000,
							"description": "Cultivated area in acres",
						},
					},
				},
				"PredictionResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"id":       str,
						"yield":    num,
						"unit":     str,
						"display":  str,
						"features": map[string]interface{}{"type": "object", "additionalProperties": num},
						"advisory": ref("Advisory"),
						"inputs":   ref("PredictionRequest"),
					},
				},
				"AdviseRequest": map[string]interface{}{
					"type":     "object",
					"required": []string{"yield"},
					"properties": map[string]interface{}{
						"yield":         num,
						"crop":          str,
						"temperature":   number(0, 50),
						"humidity":      number(0, 100),
						"soil_moisture": number(0, 100),
					},
				},
				"AdviseResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"yield":    num,
						"display":  str,
						"advisory": ref("Advisory"),
					},
				},
				"Advisory": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"category":       map[string]interface{}{"type": "string", "enum": []string{"Low", "Moderate", "High"}},
						"guidance":       str,
						"crop_guidance":  str,
						"harvest_window": str,
						"fertilizer":     str,
						"environmental": map[string]interface{}{
							"type": "array",
							"items": map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"kind":    str,
									"message": str,
								},
							},
						},
					},
				},
				"Catalog": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"order":        str,
						"locations":    map[string]interface{}{"type": "array", "items": str},
						"sublocations": map[string]interface{}{"type": "object", "additionalProperties": map[string]interface{}{"type": "array", "items": str}},
						"seasons":      map[string]interface{}{"type": "array", "items": str},
						"crops":        map[string]interface{}{"type": "array", "items": str},
						"ranges":       map[string]interface{}{"type": "object"},
					},
				},
				"SubLocations": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"location":     str,
						"sublocations": map[string]interface{}{"type": "array", "items": str},
					},
				},
				"Error": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"error":   str,
						"message": str,
						"code":    map[string]string{"type": "integer"},
						"field":   str,
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
