// Package model contains the domain models shared across layers.
package model

import "time"

// AnonymousUploader is recorded as owner when the submitter gives no identity.
const AnonymousUploader = "anonymous"

// CandidateTimeLayout is the timestamp layout of Candidate.ExtractedAt.
const CandidateTimeLayout = "2006-01-02 15:04:05"

// TariffRecord is the canonical unit every ingestion path converges to.
// This is a pure domain model with no database-specific dependencies or tags.
//
// Price is nil when the source value could not be parsed; it is encoded as JSON null,
// never as zero. Meta holds source columns that did not map to a canonical field.
type TariffRecord struct {
	ID          string         `json:"id,omitempty"`
	Route       string         `json:"route"`
	Origin      string         `json:"origin,omitempty"`
	Destination string         `json:"destination,omitempty"`
	Price       *float64       `json:"price"`
	Discounted  string         `json:"discounted,omitempty"`
	Km          string         `json:"km,omitempty"`
	Unit        string         `json:"unit,omitempty"`
	Meta        map[string]any `json:"meta"`
	UploadedBy  string         `json:"uploaded_by"`
	UploadedAt  time.Time      `json:"uploaded_at"`
}

// Candidate is a route/price triple extracted from scanned text and not yet persisted.
// All fields are kept as strings exactly as matched.
type Candidate struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Price       string `json:"price"`
	ExtractedAt string `json:"extracted_at"`
}
