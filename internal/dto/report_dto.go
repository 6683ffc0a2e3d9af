package dto

import "time"

type SubmitReportResponse struct {
	Success         bool   `json:"success"`
	ReferenceNumber string `json:"reference_number"`
	Message         string `json:"message"`
}

type TrackUpdate struct {
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
}

type TrackResponse struct {
	ReferenceNumber string        `json:"reference_number"`
	Status          string        `json:"status"`
	SubmittedAt     time.Time     `json:"submitted_at"`
	LastUpdated     time.Time     `json:"last_updated"`
	Updates         []TrackUpdate `json:"updates"`
}
