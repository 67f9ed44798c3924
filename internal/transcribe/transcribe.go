// Package transcribe turns speech into timed segments with a hosted model
// and lays them onto a document track.
package transcribe

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mgpai22/freespeech/internal/audio"
	"github.com/mgpai22/freespeech/internal/document"
	"github.com/mgpai22/freespeech/internal/pool"
	"github.com/mgpai22/freespeech/internal/subtitle"
)

// transcription result
type Result struct {
	Segments []subtitle.Segment
	Language string
	Duration time.Duration
}

// Transcriber transcribes one audio chunk. Segment times are relative to
// the chunk start.
type Transcriber interface {
	Transcribe(ctx context.Context, chunk audio.ChunkInfo) (*Result, error)
}

// transcription service provider
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// transcription options
type Options struct {
	Language           string // source language of audio
	TranscriptLanguage string // output language, "native" keeps the source
	Model              string
	Prompt             string
}

// creates transcriber based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Transcriber, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiTranscriber(ctx, apiKey, opts)
	case ProviderOpenAI:
		if !ValidOpenAITranscriptLanguage(opts.TranscriptLanguage) {
			return nil, fmt.Errorf(
				"openai can only transcribe natively or into english, got %q",
				opts.TranscriptLanguage,
			)
		}
		return NewOpenAITranscriber(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// ValidOpenAITranscriptLanguage reports whether lang is an output language
// the OpenAI audio endpoints can produce.
func ValidOpenAITranscriptLanguage(lang string) bool {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "", "native", "english", "en":
		return true
	default:
		return false
	}
}

// TranscribeChunks runs t over every chunk with at most concurrency calls in
// flight and merges the segments onto the media timeline.
func TranscribeChunks(
	ctx context.Context,
	t Transcriber,
	chunks []audio.ChunkInfo,
	concurrency int,
) (*Result, error) {
	if len(chunks) == 0 {
		return &Result{}, nil
	}

	results, err := pool.Map(ctx, chunks, concurrency,
		func(ctx context.Context, _ int, chunk audio.ChunkInfo) (*Result, error) {
			r, err := t.Transcribe(ctx, chunk)
			if err != nil {
				return nil, fmt.Errorf("chunk %d failed: %w", chunk.Index, err)
			}
			return r, nil
		})
	if err != nil {
		return nil, err
	}

	merged := &Result{Duration: chunks[len(chunks)-1].EndTime}
	for i, r := range results {
		offset := chunks[i].StartTime
		if merged.Language == "" {
			merged.Language = r.Language
		}
		for _, seg := range r.Segments {
			merged.Segments = append(merged.Segments, subtitle.Segment{
				StartTime: seg.StartTime + offset,
				EndTime:   seg.EndTime + offset,
				Text:      seg.Text,
			})
		}
	}
	sort.SliceStable(merged.Segments, func(i, j int) bool {
		return merged.Segments[i].StartTime < merged.Segments[j].StartTime
	})
	return merged, nil
}

// Apply splits the result into caption-sized texts and appends them to
// track of doc. It returns how many texts were added.
func Apply(doc *document.Document, track int, r *Result, g *subtitle.Segmenter) (int, error) {
	if g == nil {
		g = subtitle.NewSegmenter()
	}
	sub := &subtitle.Subtitle{Entries: g.Entries(r.Segments), Language: r.Language}
	return subtitle.ToTrack(doc, track, sub)
}
