package dto

import "github.com/google/uuid"

type SizeResponse struct {
	Size int `json:"Size"`
}

type RandomProfileResponse struct {
	ProfileID uuid.UUID `json:"Profile ID"`
}

type SayResponse struct {
	Say string `json:"Say"`
}

type HealthResponse struct {
	Database string `json:"database"`
	Cache    string `json:"cache"`
}
