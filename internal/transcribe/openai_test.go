package transcribe

import (
	"testing"
	"time"
)

func TestParseVerboseJSONResponse(t *testing.T) {
	transcriber := &OpenAITranscriber{}

	tests := []struct {
		name      string
		rawJSON   string
		wantCount int
		wantErr   bool
	}{
		{
			name: "segments",
			rawJSON: `{"text": "Hello world. How are you?", "duration": 3.0, "segments": [
				{"start": 0.0, "end": 1.5, "text": "Hello world."},
				{"start": 1.5, "end": 3.0, "text": "How are you?"}
			]}`,
			wantCount: 2,
		},
		{
			name:      "text only",
			rawJSON:   `{"text": "No segments here.", "segments": null, "duration": 1.0}`,
			wantCount: 1,
		},
		{
			name: "blank segments dropped",
			rawJSON: `{"text": "Hello", "segments": [
				{"start": 0.0, "end": 0.5, "text": ""},
				{"start": 0.5, "end": 1.5, "text": "Hello"},
				{"start": 1.5, "end": 2.0, "text": "   "}
			]}`,
			wantCount: 1,
		},
		{
			name: "extra whisper fields",
			rawJSON: `{"task": "transcribe", "language": "english", "duration": 8.47, "text": "a b", "segments": [
				{"id": 0, "seek": 0, "start": 0.0, "end": 3.32, "text": "a", "tokens": [1, 2], "avg_logprob": -0.28},
				{"id": 1, "seek": 0, "start": 3.32, "end": 6.19, "text": "b", "tokens": [3], "no_speech_prob": 0.009}
			]}`,
			wantCount: 2,
		},
		{name: "empty", rawJSON: "", wantErr: true},
		{name: "invalid", rawJSON: `{"text": "incomplete`, wantErr: true},
		{name: "nothing usable", rawJSON: `{"text": "", "segments": []}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments, err := transcriber.parseVerboseJSONResponse(tt.rawJSON, 5*time.Second)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(segments) != tt.wantCount {
				t.Errorf("got %d segments, want %d", len(segments), tt.wantCount)
			}
			for i, seg := range segments {
				if seg.Text == "" {
					t.Errorf("segment %d has empty text", i)
				}
			}
		})
	}
}

func TestParseVerboseJSONResponseTimestamps(t *testing.T) {
	transcriber := &OpenAITranscriber{}

	segments, err := transcriber.parseVerboseJSONResponse(`{"segments": [
		{"start": 1.5, "end": 3.0, "text": " Hello world. "},
		{"start": 3.0, "end": 5.5, "text": "Goodbye."}
	]}`, 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].StartTime != 1500*time.Millisecond || segments[0].EndTime != 3*time.Second {
		t.Errorf("segment 0 = %v..%v", segments[0].StartTime, segments[0].EndTime)
	}
	if segments[0].Text != "Hello world." {
		t.Errorf("segment 0 text = %q", segments[0].Text)
	}
	if segments[1].EndTime != 5500*time.Millisecond {
		t.Errorf("segment 1 end = %v", segments[1].EndTime)
	}
}

func TestFallbackDuration(t *testing.T) {
	transcriber := &OpenAITranscriber{}

	segments, err := transcriber.parseVerboseJSONResponse(`{"text": "whole chunk"}`, 15*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segments) != 1 || segments[0].EndTime != 15*time.Second {
		t.Errorf("segments = %+v", segments)
	}

	segments, err = transcriber.parseVerboseJSONResponse(`{"text": "whole chunk", "duration": 10.5}`, 15*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if segments[0].EndTime != time.Duration(10.5*float64(time.Second)) {
		t.Errorf("response duration ignored: %v", segments[0].EndTime)
	}
}

func TestSegmentsOrWhole(t *testing.T) {
	transcriber := &OpenAITranscriber{}

	segments := transcriber.segmentsOrWhole("not json", "  plain text  ", 4*time.Second)
	if len(segments) != 1 {
		t.Fatalf("segments = %+v", segments)
	}
	if segments[0].Text != "plain text" || segments[0].EndTime != 4*time.Second {
		t.Errorf("fallback segment = %+v", segments[0])
	}
}

func TestShouldUseTranslation(t *testing.T) {
	tests := map[string]bool{
		"english": true,
		"ENGLISH": true,
		" en ":    true,
		"native":  false,
		"":        false,
		"spanish": false,
	}
	for lang, want := range tests {
		transcriber := &OpenAITranscriber{options: Options{TranscriptLanguage: lang}}
		if got := transcriber.shouldUseTranslation(); got != want {
			t.Errorf("shouldUseTranslation(%q) = %v, want %v", lang, got, want)
		}
	}
}
