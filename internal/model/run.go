package model

import (
	"encoding/json"
	"time"
)

// RunStatus tracks the lifecycle of an analysis run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// AnalysisRun records one pass through the advisory pipeline: the weather
// context that fed the prompt, the recommendation that came back, and the
// financial report derived from it.
type AnalysisRun struct {
	ID             string          `json:"id"`
	Status         RunStatus       `json:"status"`
	FarmSizeHa     float64         `json:"farm_size_ha"`
	WeatherSummary string          `json:"weather_summary,omitempty"`
	Demo           bool            `json:"demo"`
	Recommendation json.RawMessage `json:"recommendation,omitempty"`
	Report         json.RawMessage `json:"report,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Document is an uploaded knowledge-base file (cultivation records).
type Document struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Content    string    `json:"content"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Parcel is a field boundary imported from a shapefile.
type Parcel struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	AreaHa      float64   `json:"area_ha"`
	CentroidLat float64   `json:"centroid_lat"`
	CentroidLon float64   `json:"centroid_lon"`
	ImportedAt  time.Time `json:"imported_at"`
}
