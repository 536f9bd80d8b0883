package transcript

import (
	"fmt"
	"strings"
	"time"

	"github.com/foxseedlab/kikitorin/internal/protocol"
	"github.com/foxseedlab/kikitorin/internal/webhook"
)

// 変更容易性を高めるため、time.DateTime をあえて指定していない
const headerTimeLayout = "2006-01-02 15:04:05"

// Render produces the human-readable transcript: a short header followed
// by one line per segment. Segments with word timings get an offset from
// the start of the stream; segments without them fall back to 00:00:00.
func Render(sessionID string, startedAt, endedAt time.Time, results []protocol.Result) []byte {
	lines := []string{
		fmt.Sprintf("セッションID：%s", sessionID),
		fmt.Sprintf("文字起こし期間：%s ~ %s（UTC）", startedAt.UTC().Format(headerTimeLayout), endedAt.UTC().Format(headerTimeLayout)),
		fmt.Sprintf("セグメント数：%d", len(results)),
		"",
	}
	for _, r := range results {
		marker := "partial"
		if r.Final {
			marker = "final"
		}
		lines = append(lines, fmt.Sprintf("%s [%s] %s", formatElapsedHMS(segmentOffset(r)), marker, r.Transcript))
	}
	return []byte(strings.Join(lines, "\n"))
}

// BuildWebhookPayload flattens the result list into the delivery payload.
func BuildWebhookPayload(sessionID, model string, startedAt, endedAt time.Time, results []protocol.Result) webhook.TranscriptPayload {
	segments := make([]webhook.TranscriptSegment, 0, len(results))
	transcriptLines := make([]string, 0, len(results))
	for i, r := range results {
		segments = append(segments, webhook.TranscriptSegment{
			Index:              i,
			Transcript:         r.Transcript,
			Confidence:         r.Confidence,
			Final:              r.Final,
			StartOffsetSeconds: segmentOffset(r).Seconds(),
			EndOffsetSeconds:   segmentEnd(r).Seconds(),
		})
		transcriptLines = append(transcriptLines, r.Transcript)
	}

	durationSeconds := int64(endedAt.Sub(startedAt).Seconds())
	if durationSeconds < 0 {
		durationSeconds = 0
	}

	return webhook.TranscriptPayload{
		SchemaVersion:   webhook.TranscriptSchemaVersion,
		SessionID:       sessionID,
		Model:           model,
		StartAt:         startedAt.UTC().Format(time.RFC3339),
		EndAt:           endedAt.UTC().Format(time.RFC3339),
		DurationSeconds: durationSeconds,
		SegmentCount:    len(results),
		Segments:        segments,
		Transcript:      strings.Join(transcriptLines, "\n"),
	}
}

func segmentOffset(r protocol.Result) time.Duration {
	if len(r.Words) == 0 {
		return 0
	}
	offset := time.Duration(r.Words[0].StartTime * float64(time.Second))
	if offset < 0 {
		return 0
	}
	return offset
}

func segmentEnd(r protocol.Result) time.Duration {
	if len(r.Words) == 0 {
		return 0
	}
	end := time.Duration(r.Words[len(r.Words)-1].EndTime * float64(time.Second))
	if end < 0 {
		return 0
	}
	return end
}

func formatElapsedHMS(d time.Duration) string {
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
