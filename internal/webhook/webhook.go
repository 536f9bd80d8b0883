package webhook

import "context"

const TranscriptSchemaVersion = "2026-08-01"

type Sender interface {
	SendTranscript(ctx context.Context, payload TranscriptPayload) error
}

type TranscriptPayload struct {
	SchemaVersion   string              `json:"schema_version"`
	SessionID       string              `json:"session_id"`
	Model           string              `json:"model,omitempty"`
	StartAt         string              `json:"start_at"`
	EndAt           string              `json:"end_at"`
	DurationSeconds int64               `json:"duration_seconds"`
	SegmentCount    int                 `json:"segment_count"`
	Segments        []TranscriptSegment `json:"segments"`
	Transcript      string              `json:"transcript"`
}

type TranscriptSegment struct {
	Index              int     `json:"index"`
	Transcript         string  `json:"transcript"`
	Confidence         float64 `json:"confidence"`
	Final              bool    `json:"final"`
	StartOffsetSeconds float64 `json:"start_offset_seconds,omitempty"`
	EndOffsetSeconds   float64 `json:"end_offset_seconds,omitempty"`
}
