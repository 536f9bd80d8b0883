package protocol

import (
	"encoding/json"
	"testing"
)

func TestStartMessage_DefaultContentType(t *testing.T) {
	payload, err := Settings{SampleRateHertz: 16000, InterimResults: true}.StartMessage()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("start message is not valid JSON: %v", err)
	}
	if decoded["action"] != "start" {
		t.Fatalf("unexpected action: %v", decoded["action"])
	}
	if decoded["content_type"] != "audio/l16;rate=16000" {
		t.Fatalf("unexpected content type: %v", decoded["content_type"])
	}
	if decoded["interim_results"] != true {
		t.Fatalf("expected interim_results true, got %v", decoded["interim_results"])
	}
	if _, ok := decoded["model"]; ok {
		t.Fatal("expected model to be omitted when empty")
	}
}

func TestStartMessage_ModelAndOptOut(t *testing.T) {
	payload, err := Settings{Model: "broadband", LearningOptOut: true, SampleRateHertz: 8000}.StartMessage()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("start message is not valid JSON: %v", err)
	}
	if decoded["model"] != "broadband" {
		t.Fatalf("unexpected model: %v", decoded["model"])
	}
	if decoded["learning_opt_out"] != true {
		t.Fatalf("expected learning_opt_out true, got %v", decoded["learning_opt_out"])
	}
}

func TestStopMessage(t *testing.T) {
	var decoded map[string]any
	if err := json.Unmarshal(StopMessage(), &decoded); err != nil {
		t.Fatalf("stop message is not valid JSON: %v", err)
	}
	if decoded["action"] != "stop" {
		t.Fatalf("unexpected action: %v", decoded["action"])
	}
}
