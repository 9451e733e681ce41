// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ai provides abstractions for the model services used by quizpipe.
//
// Two capabilities are defined:
//
//   - Generator: produces text from a system prompt, a user message and
//     optional extra context
//   - Transcriber: converts an audio file into text
//
// # Implementation Packages
//
//   - ai/ollama: Generator backed by a local Ollama server
//   - ai/openai: Generator backed by OpenAI or any OpenAI-compatible server
//   - ai/gemini: Generator backed by the Gemini API
//   - ai/whisper: Transcribers backed by whisper.cpp or the OpenAI audio API
//   - ai/mock: Test doubles for unit testing without external services
//
// Production constructors return the ai interfaces. Mock constructors return
// concrete types so tests can script replies and inspect recorded calls.
//
// # Middleware
//
// WithRetry and WithRateLimit wrap any Generator. quizpipe.NewGenerator
// applies them from Config, rate limit innermost so retries are throttled too:
//
//	gen, err := ollama.NewGenerator(cfg)
//	gen, err = ai.WithRateLimit(gen, cfg.RequestsPerMinute)
//	gen, err = ai.WithRetry(gen, cfg.MaxAttempts, cfg.RetryDelay)
package ai
