package cli

import (
	"fmt"
	"strings"

	"github.com/mgpai22/freespeech/internal/translate"
	"github.com/spf13/cobra"
)

var translateCmd = &cobra.Command{
	Use:   "translate [document]",
	Short: "Translate the texts of a track to another language using AI",
	Long: `Translate every timed text of a track to another language using AI.

By default the translation replaces the text in place, keeping timing and
the size of each word position. --into writes the translation to another
track with the same timing instead, leaving the source track untouched
(bilingual captions).

Examples:
  freespeech translate talk --target-language japanese
  freespeech translate talk --target-language ja --into 1
  freespeech translate talk -l english --target-language spanish --provider anthropic`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		StringP("target-language", "t", "", "Target language for translation (required)")
	translateCmd.Flags().
		StringP("language", "l", "", "Language of the source texts")
	translateCmd.Flags().
		Int("track", 0, "Track to translate")
	translateCmd.Flags().
		Int("into", -1, "Write translations to this track instead of replacing the source")
	translateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY env var)")
	translateCmd.Flags().
		String("model", "", "Model to use for translation (provider-specific, uses sensible defaults)")
	translateCmd.Flags().
		Bool("model-override", false, "Allow any custom model, bypassing provider model validation")
	translateCmd.Flags().
		String("provider", "", "Translation provider (gemini, openai, anthropic)")
	translateCmd.Flags().
		Int("concurrency", 0, "Number of parallel translation workers")
	translateCmd.Flags().
		Int("batch-size", 0, "Number of texts per API request")
	translateCmd.Flags().
		String("prompt", "", "Additional instructions for the model")

	_ = translateCmd.MarkFlagRequired("target-language")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	flags := cmd.Flags()

	targetLang, _ := flags.GetString("target-language")
	inputLang, _ := flags.GetString("language")
	track, _ := flags.GetInt("track")
	into, _ := flags.GetInt("into")
	flagKey, _ := flags.GetString("api-key")
	model, _ := flags.GetString("model")
	modelOverride, _ := flags.GetBool("model-override")
	providerStr, _ := flags.GetString("provider")
	concurrency, _ := flags.GetInt("concurrency")
	batchSize, _ := flags.GetInt("batch-size")
	prompt, _ := flags.GetString("prompt")

	if providerStr == "" {
		providerStr = cfg.Translate.Provider
	}
	if model == "" {
		model = cfg.Translate.Model
	}
	if concurrency <= 0 {
		concurrency = cfg.Translate.Concurrency
	}
	if batchSize <= 0 {
		batchSize = cfg.Translate.BatchSize
	}

	if strings.TrimSpace(targetLang) == "" {
		return fmt.Errorf("target language is required")
	}
	if inputLang != "" && strings.EqualFold(strings.TrimSpace(inputLang), strings.TrimSpace(targetLang)) {
		return fmt.Errorf(
			"input language %q and target language %q cannot be the same",
			inputLang,
			targetLang,
		)
	}
	if into == track {
		return fmt.Errorf("--into must name a different track than --track")
	}

	provider := translate.Provider(providerStr)
	if model != "" && !modelOverride && !translate.KnownModel(provider, model) {
		return fmt.Errorf(
			"unsupported %s model %q: valid models are %s (use --model-override to bypass)",
			provider,
			model,
			strings.Join(translate.KnownModels(provider), ", "),
		)
	}

	key, err := apiKey(providerStr, flagKey)
	if err != nil {
		return err
	}

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	doc, err := s.open(ctx, args[0])
	if err != nil {
		return err
	}

	var job *translate.Job
	err = s.do(ctx, func() error {
		job, err = translate.NewJob(doc, track)
		return err
	})
	if err != nil {
		return err
	}
	if len(job.Items) == 0 {
		return fmt.Errorf("track %d has no text to translate", track)
	}

	logger.Infow("Starting translation",
		"document", doc.Pathname(),
		"track", track,
		"texts", len(job.Items),
		"target_language", targetLang,
		"input_language", inputLang,
		"provider", provider,
		"model", model,
	)

	translator, err := translate.Factory(ctx, provider, key, translate.Options{
		InputLanguage:  inputLang,
		TargetLanguage: targetLang,
		Model:          model,
		Prompt:         prompt,
	})
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	results, err := translate.Translate(ctx, translator, job.Items, batchSize, concurrency)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}
	logger.Infow("Translation complete", "results", len(results))

	var applied int
	err = s.do(ctx, func() error {
		if into >= 0 {
			applied, err = job.Overlay(doc, into, results)
		} else {
			applied, err = job.Replace(results)
		}
		if err != nil {
			return err
		}
		return s.op.Save(doc)
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	acknowledge(out, "Translated track %d of %s", track, doc.Pathname())
	fmt.Fprintf(out, "  Texts: %d\n", applied)
	fmt.Fprintf(out, "  Target language: %s\n", targetLang)
	if into >= 0 {
		fmt.Fprintf(out, "  Written to track: %d\n", into)
	}
	return nil
}
