package dto

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

type ServiceInfoResponse struct {
	Service      string            `json:"service"`
	Version      string            `json:"version"`
	Status       string            `json:"status"`
	Capabilities []string          `json:"capabilities"`
	Endpoints    map[string]string `json:"endpoints"`
}
