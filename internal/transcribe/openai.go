package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/mgpai22/freespeech/internal/audio"
	"github.com/mgpai22/freespeech/internal/subtitle"
)

// implements Transcriber using the OpenAI audio API
type OpenAITranscriber struct {
	client  openai.Client
	model   string
	options Options
}

// segment from the verbose_json response
type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// verbose_json response structure
type whisperVerboseResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
}

func NewOpenAITranscriber(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	model := opts.Model
	if model == "" {
		model = "whisper-1"
	}

	return &OpenAITranscriber{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		options: opts,
	}, nil
}

func (t *OpenAITranscriber) Transcribe(
	ctx context.Context,
	chunk audio.ChunkInfo,
) (*Result, error) {
	file, err := os.Open(chunk.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	if t.shouldUseTranslation() {
		return t.transcribeWithTranslation(ctx, file, chunk.Duration())
	}
	return t.transcribeWithTimestamps(ctx, file, chunk.Duration())
}

// english output goes through the translations endpoint
func (t *OpenAITranscriber) shouldUseTranslation() bool {
	lang := strings.ToLower(strings.TrimSpace(t.options.TranscriptLanguage))
	return lang == "english" || lang == "en"
}

func (t *OpenAITranscriber) transcribeWithTranslation(
	ctx context.Context,
	file *os.File,
	duration time.Duration,
) (*Result, error) {
	params := openai.AudioTranslationNewParams{
		File:           file,
		Model:          openai.AudioModel(t.model),
		ResponseFormat: openai.AudioTranslationNewParamsResponseFormatVerboseJSON,
	}
	if t.options.Prompt != "" {
		params.Prompt = openai.String(t.options.Prompt)
	}

	resp, err := t.client.Audio.Translations.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}

	return &Result{
		Segments: t.segmentsOrWhole(resp.RawJSON(), resp.Text, duration),
		Language: "en",
		Duration: duration,
	}, nil
}

func (t *OpenAITranscriber) transcribeWithTimestamps(
	ctx context.Context,
	file *os.File,
	duration time.Duration,
) (*Result, error) {
	params := openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(t.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"segment"},
	}
	if t.options.Language != "" {
		params.Language = openai.String(t.options.Language)
	}
	if t.options.Prompt != "" {
		params.Prompt = openai.String(t.options.Prompt)
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	return &Result{
		Segments: t.segmentsOrWhole(resp.RawJSON(), resp.Text, duration),
		Language: t.options.Language,
		Duration: duration,
	}, nil
}

// segmentsOrWhole falls back to one segment spanning the chunk when the
// response carries no usable segments.
func (t *OpenAITranscriber) segmentsOrWhole(rawJSON, text string, duration time.Duration) []subtitle.Segment {
	segments, err := t.parseVerboseJSONResponse(rawJSON, duration)
	if err == nil {
		return segments
	}
	return []subtitle.Segment{{
		StartTime: 0,
		EndTime:   duration,
		Text:      strings.TrimSpace(text),
	}}
}

func (t *OpenAITranscriber) parseVerboseJSONResponse(
	rawJSON string,
	fallbackDuration time.Duration,
) ([]subtitle.Segment, error) {
	if rawJSON == "" {
		return nil, fmt.Errorf("empty response")
	}

	var resp whisperVerboseResponse
	if err := json.Unmarshal([]byte(rawJSON), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse verbose_json response: %w", err)
	}

	if len(resp.Segments) == 0 {
		if resp.Text == "" {
			return nil, fmt.Errorf("no segments or text in response")
		}
		end := fallbackDuration
		if resp.Duration > 0 {
			end = seconds(resp.Duration)
		}
		return []subtitle.Segment{{
			StartTime: 0,
			EndTime:   end,
			Text:      strings.TrimSpace(resp.Text),
		}}, nil
	}

	segments := make([]subtitle.Segment, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		segments = append(segments, subtitle.Segment{
			StartTime: seconds(seg.Start),
			EndTime:   seconds(seg.End),
			Text:      text,
		})
	}
	return segments, nil
}
