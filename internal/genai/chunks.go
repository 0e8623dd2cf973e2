package genai

// ChunkKind tags the shape of an evidence chunk after decoding.
type ChunkKind string

const (
	ChunkWeb     ChunkKind = "web"
	ChunkMaps    ChunkKind = "maps"
	ChunkUnknown ChunkKind = "unknown"
)

// EvidenceChunk is one unit of grounding data returned alongside a
// generated answer. Chunks are heterogeneous: a chunk may describe a web
// page, a map place, or neither. Decoding is defensive; shapes that carry
// neither payload come out as ChunkUnknown and are dropped downstream
// rather than raising.
type EvidenceChunk struct {
	Web  *WebEvidence  `json:"web,omitempty"`
	Maps *MapsEvidence `json:"maps,omitempty"`
}

// WebEvidence describes a web-page source.
type WebEvidence struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// MapsEvidence describes a map place, optionally with review snippets
// collected from the place listing.
type MapsEvidence struct {
	URI                string              `json:"uri"`
	Title              string              `json:"title"`
	PlaceID            string              `json:"placeId,omitempty"`
	PlaceAnswerSources *PlaceAnswerSources `json:"placeAnswerSources,omitempty"`
}

// PlaceAnswerSources nests the ordered review-snippet list. Only the first
// snippet is ever surfaced to callers.
type PlaceAnswerSources struct {
	ReviewSnippets []ReviewSnippet `json:"reviewSnippets,omitempty"`
}

// ReviewSnippet is one quoted review fragment.
type ReviewSnippet struct {
	Content string `json:"content"`
}

// Kind reports which payload the chunk carries. A chunk with both payloads
// counts as maps, matching the precedence the retention filter applies.
func (c EvidenceChunk) Kind() ChunkKind {
	switch {
	case c.Maps != nil:
		return ChunkMaps
	case c.Web != nil:
		return ChunkWeb
	default:
		return ChunkUnknown
	}
}

// MapTitle returns the map payload's title, or "" when the chunk has no
// map payload. The retention filter keeps a chunk iff this is non-empty.
func (c EvidenceChunk) MapTitle() string {
	if c.Maps == nil {
		return ""
	}
	return c.Maps.Title
}

// FirstReviewSnippet returns the first review snippet's content, or ""
// when the chunk carries none. Absence is not an error.
func (c EvidenceChunk) FirstReviewSnippet() string {
	if c.Maps == nil || c.Maps.PlaceAnswerSources == nil {
		return ""
	}
	snippets := c.Maps.PlaceAnswerSources.ReviewSnippets
	if len(snippets) == 0 {
		return ""
	}
	return snippets[0].Content
}
