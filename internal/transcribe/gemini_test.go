package transcribe

import (
	"strings"
	"testing"

	"google.golang.org/genai"
)

func TestExtractTranscriptSegments(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCount int
		wantErr   bool
	}{
		{
			name:      "plain array",
			input:     `[{"start": 0.0, "end": 2.5, "text": "Hello world"}, {"start": 2.5, "end": 5.0, "text": "How are you"}]`,
			wantCount: 2,
		},
		{
			name:      "preamble and trailing text",
			input:     "Here is your transcript:\n[{\"start\": 1.0, \"end\": 3.0, \"text\": \"Test\"}]\nThat's all!",
			wantCount: 1,
		},
		{
			name:      "segments key",
			input:     `{"segments": [{"start": 0.0, "end": 2.0, "text": "Wrapped"}]}`,
			wantCount: 1,
		},
		{
			name:      "unknown key",
			input:     `{"myCustomKey": [{"start": 0.0, "end": 2.0, "text": "Custom"}]}`,
			wantCount: 1,
		},
		{
			name:      "nested wrapper",
			input:     `{"response": {"segments": [{"start": 0.0, "end": 1.0, "text": "Nested"}]}}`,
			wantCount: 1,
		},
		{
			name:      "unrelated object before array",
			input:     "{\"status\": \"ok\", \"count\": 5}\n[{\"start\": 0.0, \"end\": 2.0, \"text\": \"Real\"}]",
			wantCount: 1,
		},
		{
			name:      "timestamps but no text",
			input:     `[{"start": 1.0, "end": 2.0, "text": ""}]`,
			wantCount: 1,
		},
		{name: "empty array", input: `[]`, wantErr: true},
		{name: "no json", input: `just words`, wantErr: true},
		{name: "truncated", input: `[{"start": 0.0, "end": 2.0, "text": "cut"`, wantErr: true},
		{name: "all zero", input: `[{"start": 0, "end": 0, "text": ""}]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments, err := extractTranscriptSegments(tt.input)
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
		})
	}
}

func TestValidateSegments(t *testing.T) {
	tests := []struct {
		name     string
		segments []transcriptSegment
		want     bool
	}{
		{"nil", nil, false},
		{"text", []transcriptSegment{{Text: "hello"}}, true},
		{"start only", []transcriptSegment{{Start: 1.0}}, true},
		{"all zero", []transcriptSegment{{}}, false},
		{"one valid", []transcriptSegment{{}, {Start: 1, End: 2, Text: "ok"}}, true},
	}
	for _, tt := range tests {
		if got := validateSegments(tt.segments); got != tt.want {
			t.Errorf("%s: validateSegments() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParseResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "```json\n[{\"start\": 0.5, \"end\": 1.25, \"text\": \"  hi there \"}]"},
				{Text: "\n```"},
			}},
		}},
	}
	segments, err := parseResponse(resp)
	if err != nil {
		t.Fatalf("parseResponse: %v", err)
	}
	if len(segments) != 1 || segments[0].Text != "hi there" {
		t.Fatalf("segments = %+v", segments)
	}
	if segments[0].StartTime.Milliseconds() != 500 || segments[0].EndTime.Milliseconds() != 1250 {
		t.Errorf("times = %v..%v", segments[0].StartTime, segments[0].EndTime)
	}

	if _, err := parseResponse(&genai.GenerateContentResponse{}); err == nil {
		t.Error("expected error for empty response")
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt(Options{Language: "japanese", TranscriptLanguage: "english", Prompt: "Names: Taro."})
	for _, want := range []string{"The audio is in japanese.", "Output the transcript in english.", "Names: Taro."} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(buildPrompt(Options{TranscriptLanguage: "Native"}), "Output the transcript") {
		t.Error("native transcript language should not ask for translation")
	}
}
