// Package locator turns one coordinate pair into a normalized, renderable
// list of nearby medical facilities plus a narrative summary.
package locator

import (
	"context"
	"errors"
	"log"
	"sync"

	"graminhealth/internal/genai"
	"graminhealth/pkg"
)

// QueryIntent is the fixed natural-language request sent with every
// grounded query.
const QueryIntent = "Find the nearest hospitals, health centers, and emergency clinics. Sort them by distance and mention if they are open 24/7."

// Fixed user-facing strings.
const (
	// SummaryFallback replaces an absent narrative text.
	SummaryFallback = "I found some locations nearby."
	// MsgUnsupported: the device has no location capability at all.
	MsgUnsupported = "Geolocation is not supported on this device."
	// MsgLocationFailed: the provider exists but could not produce a fix.
	MsgLocationFailed = "Unable to retrieve your location. Please ensure GPS is enabled."
	// MsgQueryFailed prompts a manual retry after a remote failure.
	MsgQueryFailed = "Failed to fetch hospital data. Please try again."
	// MsgNothingFound renders the distinct no-data state.
	MsgNothingFound = "No specific hospital data found nearby."
)

// ErrUnsupported is returned by a Provider that has no location source.
var ErrUnsupported = errors.New("locator: geolocation unsupported")

// Provider yields the device's current position. One shot: a coordinate or
// a failure, no retry loop at this layer.
type Provider interface {
	Current(ctx context.Context) (pkg.Coordinate, error)
}

// State is the display phase of the locator.
type State string

const (
	StateIdle     State = "idle"
	StateLocating State = "locating"
	StateQuerying State = "querying"
	// StateReady: a result with at least one facility is stored.
	StateReady State = "ready"
	// StateEmpty: the query succeeded but zero chunks survived the
	// retention filter. Not an error.
	StateEmpty State = "empty"
	// StateError: the last locate/query failed; any prior result is kept.
	StateError State = "error"
)

// Snapshot is the full UI-facing state of the locator at one instant.
type Snapshot struct {
	State      State
	Coordinate *pkg.Coordinate
	Result     *pkg.QueryResult
	Message    string
}

// Locator orchestrates locate-then-query. All mutable state is owned here;
// a boolean latch rejects calls issued while one is already in flight,
// matching the chat manager's discipline.
type Locator struct {
	mu       sync.Mutex
	client   genai.Client
	provider Provider
	inFlight bool

	state      State
	coordinate *pkg.Coordinate
	result     *pkg.QueryResult
	message    string

	logger *log.Logger
}

// Option configures a Locator.
type Option func(*Locator)

// WithLogger replaces the default diagnostics logger.
func WithLogger(l *log.Logger) Option {
	return func(lo *Locator) {
		if l != nil {
			lo.logger = l
		}
	}
}

// New constructs a Locator over the given backend client and position
// provider.
func New(client genai.Client, provider Provider, opts ...Option) *Locator {
	lo := &Locator{
		client:   client,
		provider: provider,
		state:    StateIdle,
		logger:   log.New(log.Writer(), "[LOCATOR] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(lo)
	}
	return lo
}

// Locate requests the current position and, on success, immediately runs
// Query with it. A provider failure is terminal for this call: the
// snapshot carries a literal message distinguishing "unsupported" from
// "unable to retrieve". Ignored while another locate/query is in flight.
func (lo *Locator) Locate(ctx context.Context) Snapshot {
	lo.mu.Lock()
	if lo.inFlight {
		snap := lo.snapshotLocked()
		lo.mu.Unlock()
		return snap
	}
	if lo.provider == nil {
		lo.state = StateError
		lo.message = MsgUnsupported
		snap := lo.snapshotLocked()
		lo.mu.Unlock()
		return snap
	}
	lo.inFlight = true
	lo.state = StateLocating
	lo.mu.Unlock()

	coord, err := lo.provider.Current(ctx)

	if err != nil {
		lo.logger.Printf("location request failed: %v", err)
		lo.mu.Lock()
		lo.state = StateError
		if errors.Is(err, ErrUnsupported) {
			lo.message = MsgUnsupported
		} else {
			lo.message = MsgLocationFailed
		}
		lo.inFlight = false
		snap := lo.snapshotLocked()
		lo.mu.Unlock()
		return snap
	}

	// Keep the latch across the handoff so no other call can slip in
	// between the fix arriving and the query going out.
	lo.mu.Lock()
	lo.coordinate = &coord
	lo.state = StateQuerying
	lo.mu.Unlock()
	return lo.runQuery(ctx, coord)
}

// Query issues one grounded search for the coordinate and replaces the
// stored result wholesale on success. On failure the prior result is left
// untouched and only the error state is set. Ignored while another
// locate/query is in flight.
func (lo *Locator) Query(ctx context.Context, coord pkg.Coordinate) Snapshot {
	lo.mu.Lock()
	if lo.inFlight {
		snap := lo.snapshotLocked()
		lo.mu.Unlock()
		return snap
	}
	if err := coord.Validate(); err != nil {
		lo.logger.Printf("rejecting query: %v", err)
		lo.state = StateError
		lo.message = MsgLocationFailed
		snap := lo.snapshotLocked()
		lo.mu.Unlock()
		return snap
	}
	lo.inFlight = true
	lo.state = StateQuerying
	lo.coordinate = &coord
	lo.mu.Unlock()
	return lo.runQuery(ctx, coord)
}

// runQuery performs the grounded exchange. The caller must already hold
// the in-flight latch; it is released here regardless of outcome.
func (lo *Locator) runQuery(ctx context.Context, coord pkg.Coordinate) Snapshot {
	raw, err := lo.client.GroundedQuery(ctx, QueryIntent, coord)

	lo.mu.Lock()
	defer lo.mu.Unlock()
	lo.inFlight = false
	if err != nil {
		lo.logger.Printf("grounded query failed: %v", err)
		lo.state = StateError
		lo.message = MsgQueryFailed
		return lo.snapshotLocked()
	}

	result := Normalize(raw)
	lo.result = &result
	if len(result.Facilities) == 0 {
		lo.state = StateEmpty
		lo.message = MsgNothingFound
	} else {
		lo.state = StateReady
		lo.message = ""
	}
	return lo.snapshotLocked()
}

// Snapshot returns the current UI-facing state.
func (lo *Locator) Snapshot() Snapshot {
	lo.mu.Lock()
	defer lo.mu.Unlock()
	return lo.snapshotLocked()
}

func (lo *Locator) snapshotLocked() Snapshot {
	snap := Snapshot{State: lo.state, Message: lo.message}
	if lo.coordinate != nil {
		c := *lo.coordinate
		snap.Coordinate = &c
	}
	if lo.result != nil {
		r := pkg.QueryResult{
			SummaryText: lo.result.SummaryText,
			Facilities:  append([]pkg.FacilityEvidence(nil), lo.result.Facilities...),
		}
		snap.Result = &r
	}
	return snap
}

// Normalize applies the retention filter to a raw grounded result: a chunk
// is kept iff it carries a map payload with a non-empty title; web-only and
// empty chunks are discarded. Order follows the service's (assumed
// distance-sorted) order; no re-sorting. Of the review snippets only the
// first is surfaced.
func Normalize(raw genai.GroundedResult) pkg.QueryResult {
	out := pkg.QueryResult{
		SummaryText: raw.Text,
		Facilities:  []pkg.FacilityEvidence{},
	}
	if out.SummaryText == "" {
		out.SummaryText = SummaryFallback
	}
	for _, chunk := range raw.Chunks {
		if chunk.MapTitle() == "" {
			continue
		}
		out.Facilities = append(out.Facilities, pkg.FacilityEvidence{
			Title:         chunk.Maps.Title,
			MapURI:        chunk.Maps.URI,
			PlaceID:       chunk.Maps.PlaceID,
			ReviewSnippet: chunk.FirstReviewSnippet(),
		})
	}
	return out
}
