package pkg

import (
	"fmt"
	"math"
)

// Role describes who authored a conversation turn. There are only two
// roles: the person asking for help and the assistant answering.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one message in a session transcript. Turns are
// immutable once appended; the transcript is an append-only ordered
// sequence. IsError marks assistant turns that stand in for a failed
// remote call so the transcript stays a complete record.
type ConversationTurn struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Text    string `json:"text"`
	IsError bool   `json:"is_error,omitempty"`
}

// Coordinate is a device-reported geographic position (WGS 84). Values are
// opaque beyond range validity and are never persisted.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks the coordinate against the valid WGS 84 ranges. NaN is
// checked explicitly: it fails every range comparison and would otherwise
// slip through to the backend.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", c.Latitude)
	}
	if math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", c.Longitude)
	}
	return nil
}

// FacilityEvidence is the normalized, display-ready projection of one
// map-typed evidence chunk. Only chunks carrying a non-empty map title
// survive normalization, so Title is always set.
type FacilityEvidence struct {
	Title         string `json:"title"`
	MapURI        string `json:"map_uri"`
	PlaceID       string `json:"place_id,omitempty"`
	ReviewSnippet string `json:"review_snippet,omitempty"`
}

// QueryResult is the outcome of one grounded location query. A fresh result
// fully replaces any prior one; results are never merged or diffed.
type QueryResult struct {
	SummaryText string             `json:"summary_text"`
	Facilities  []FacilityEvidence `json:"facilities"`
}

// EmergencyContact is one entry of the static emergency dial directory.
type EmergencyContact struct {
	Number   string `json:"number"`
	Label    string `json:"label"`
	SubLabel string `json:"sub_label,omitempty"`
}

// ChatRequest is the body of a message-send request.
type ChatRequest struct {
	Content string `json:"content"`
}

// SessionResponse is returned when a chat session is created or fetched.
type SessionResponse struct {
	SessionID  string             `json:"session_id"`
	Transcript []ConversationTurn `json:"transcript"`
}

// LocateRequest carries the coordinate for a location query.
type LocateRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocateResponse mirrors the locator snapshot after a query completes.
type LocateResponse struct {
	State       string             `json:"state"`
	SummaryText string             `json:"summary_text,omitempty"`
	Facilities  []FacilityEvidence `json:"facilities,omitempty"`
	Message     string             `json:"message,omitempty"`
}

// DialRequest names the emergency number to dial.
type DialRequest struct {
	Number string `json:"number"`
}
