package handlers

import "time"

type Snapshot struct {
	Name       string     `json:"name"`
	Key        string     `json:"key"`
	UploadedAt *time.Time `json:"uploaded_at,omitempty"`
}

type SnapshotsResponse struct {
	Snapshots []Snapshot `json:"snapshots"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

type Error struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
	Status int    `json:"status"`
	Title  string `json:"title"`
}

type ErrorResponse struct {
	Errors []Error `json:"errors"`
}
