// Package config loads freespeech settings from TOML.
//
// Lookup order: the --config flag, ~/.config/freespeech/config.toml, then
// ./freespeech.toml. Missing files fall back to Default. API keys may come
// from GEMINI_API_KEY, OPENAI_API_KEY and ANTHROPIC_API_KEY.
package config
