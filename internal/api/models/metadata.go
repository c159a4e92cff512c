package models

// Parameter describes one selectable climate parameter.
type Parameter struct {
	Code    string `json:"code"`
	Label   string `json:"label"`
	Unit    string `json:"unit"`
	Default bool   `json:"default"`
}

// ParameterList is the body of GET /v1/metadata/parameters.
type ParameterList struct {
	Items       []Parameter `json:"items"`
	Resolutions []string    `json:"resolutions"`
	Strategies  []string    `json:"strategies"`
}
