package transcribe

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/mgpai22/freespeech/internal/audio"
	"github.com/mgpai22/freespeech/internal/llmjson"
	"github.com/mgpai22/freespeech/internal/subtitle"
)

// implements Transcriber using Google Gemini
type GeminiTranscriber struct {
	client  *genai.Client
	model   string
	options Options
}

// segment from Gemini's JSON response
type transcriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

func NewGeminiTranscriber(ctx context.Context, apiKey string, opts Options) (*GeminiTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiTranscriber{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// uploads the chunk and asks for a JSON transcript
func (t *GeminiTranscriber) Transcribe(ctx context.Context, chunk audio.ChunkInfo) (*Result, error) {
	if _, err := os.Stat(chunk.Path); err != nil {
		return nil, fmt.Errorf("audio file not found: %w", err)
	}

	uploaded, err := t.client.Files.UploadFromPath(ctx, chunk.Path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upload audio file: %w", err)
	}
	defer func() {
		_, _ = t.client.Files.Delete(context.WithoutCancel(ctx), uploaded.Name, nil)
	}()

	parts := []*genai.Part{
		genai.NewPartFromText(buildPrompt(t.options)),
		genai.NewPartFromURI(uploaded.URI, uploaded.MIMEType),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	resp, err := t.client.Models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	segments, err := parseResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transcription: %w", err)
	}

	return &Result{
		Segments: segments,
		Language: t.options.Language,
		Duration: chunk.Duration(),
	}, nil
}

// creates the prompt for transcription
func buildPrompt(opts Options) string {
	var sb strings.Builder

	sb.WriteString("Generate a detailed transcript of this audio. ")
	sb.WriteString("For each sentence or phrase, provide the start timestamp, end timestamp, and the exact text spoken. ")
	sb.WriteString("Format your response as a JSON array with objects containing 'start', 'end', and 'text' fields, ")
	sb.WriteString("where 'start' and 'end' are timestamps in seconds (as numbers). ")

	if opts.Language != "" {
		fmt.Fprintf(&sb, "The audio is in %s. ", opts.Language)
	}
	if opts.TranscriptLanguage != "" && !strings.EqualFold(opts.TranscriptLanguage, "native") {
		fmt.Fprintf(&sb, "Output the transcript in %s. ", opts.TranscriptLanguage)
	}
	if opts.Prompt != "" {
		sb.WriteString(opts.Prompt)
		sb.WriteString(" ")
	}

	sb.WriteString("Return ONLY the JSON array, no other text or markdown formatting.")
	return sb.String()
}

func parseResponse(resp *genai.GenerateContentResponse) ([]subtitle.Segment, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var text strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			text.WriteString(part.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("no text in Gemini response")
	}

	cleaned := cleanJSONResponse(text.String())
	raw, err := extractTranscriptSegments(cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w (response: %s)", err, llmjson.Truncate(cleaned, 200))
	}

	segments := make([]subtitle.Segment, len(raw))
	for i, ts := range raw {
		segments[i] = subtitle.Segment{
			StartTime: seconds(ts.Start),
			EndTime:   seconds(ts.End),
			Text:      strings.TrimSpace(ts.Text),
		}
	}
	return segments, nil
}

func cleanJSONResponse(s string) string {
	return llmjson.Clean(s)
}

func extractTranscriptSegments(text string) ([]transcriptSegment, error) {
	return llmjson.Extract(text, validateSegments, "segments", "transcript", "data")
}

// a usable transcript has at least one segment carrying something
func validateSegments(segments []transcriptSegment) bool {
	for _, s := range segments {
		if s.Text != "" || s.Start != 0 || s.End != 0 {
			return true
		}
	}
	return false
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
