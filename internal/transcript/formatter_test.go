package transcript

import (
	"strings"
	"testing"
	"time"

	"github.com/foxseedlab/kikitorin/internal/protocol"
	"github.com/foxseedlab/kikitorin/internal/webhook"
)

func TestRender(t *testing.T) {
	startedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	endedAt := startedAt.Add(2 * time.Minute)
	results := []protocol.Result{
		{
			Transcript: "こんにちは",
			Final:      true,
			Words: []protocol.Word{
				{Word: "こんにちは", StartTime: 15, EndTime: 16.2},
			},
		},
		{
			Transcript: "よろしくお願いします",
			Final:      false,
			Words: []protocol.Word{
				{Word: "よろしく", StartTime: 75, EndTime: 75.8},
				{Word: "お願いします", StartTime: 76, EndTime: 77.1},
			},
		},
	}

	body := string(Render("session-1", startedAt, endedAt, results))

	if !strings.Contains(body, "セッションID：session-1") {
		t.Fatalf("session id not found in body: %s", body)
	}
	if !strings.Contains(body, "文字起こし期間：2026-08-01 12:00:00 ~ 2026-08-01 12:02:00（UTC）") {
		t.Fatalf("period line not found in body: %s", body)
	}
	if !strings.Contains(body, "00:00:15 [final] こんにちは") {
		t.Fatalf("first segment line not found in body: %s", body)
	}
	if !strings.Contains(body, "00:01:15 [partial] よろしくお願いします") {
		t.Fatalf("second segment line not found in body: %s", body)
	}
}

func TestRender_NoWordTimings(t *testing.T) {
	startedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	results := []protocol.Result{{Transcript: "hello", Final: true}}

	body := string(Render("session-1", startedAt, startedAt.Add(time.Minute), results))
	if !strings.Contains(body, "00:00:00 [final] hello") {
		t.Fatalf("expected zero offset fallback, got: %s", body)
	}
}

func TestBuildWebhookPayload(t *testing.T) {
	startedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	endedAt := startedAt.Add(45 * time.Second)
	results := []protocol.Result{
		{
			Transcript: "first",
			Confidence: 0.91,
			Final:      true,
			Words: []protocol.Word{
				{Word: "first", StartTime: 10, EndTime: 10.5},
			},
		},
		{Transcript: "second", Confidence: 0.42, Final: false},
	}

	payload := BuildWebhookPayload("session-1", "ja-JP_Broadband", startedAt, endedAt, results)

	if payload.SchemaVersion != webhook.TranscriptSchemaVersion {
		t.Fatalf("unexpected schema_version: %s", payload.SchemaVersion)
	}
	if payload.SessionID != "session-1" || payload.Model != "ja-JP_Broadband" {
		t.Fatalf("unexpected identity fields: %+v", payload)
	}
	if payload.DurationSeconds != 45 {
		t.Fatalf("unexpected duration: %d", payload.DurationSeconds)
	}
	if payload.SegmentCount != 2 || len(payload.Segments) != 2 {
		t.Fatalf("unexpected segment count: %+v", payload)
	}
	if payload.Segments[0].StartOffsetSeconds != 10 || payload.Segments[0].EndOffsetSeconds != 10.5 {
		t.Fatalf("unexpected first segment offsets: %+v", payload.Segments[0])
	}
	if !payload.Segments[0].Final || payload.Segments[1].Final {
		t.Fatalf("unexpected finality flags: %+v", payload.Segments)
	}
	if payload.Transcript != "first\nsecond" {
		t.Fatalf("unexpected flattened transcript: %q", payload.Transcript)
	}
	if payload.StartAt != "2026-08-01T12:00:00Z" || payload.EndAt != "2026-08-01T12:00:45Z" {
		t.Fatalf("unexpected timestamps: %s ~ %s", payload.StartAt, payload.EndAt)
	}
}

func TestBuildWebhookPayload_NegativeDurationClamped(t *testing.T) {
	startedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	payload := BuildWebhookPayload("session-1", "", startedAt, startedAt.Add(-time.Second), nil)
	if payload.DurationSeconds != 0 {
		t.Fatalf("expected clamped duration, got %d", payload.DurationSeconds)
	}
}
