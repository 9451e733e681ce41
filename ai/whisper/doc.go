// Package whisper provides ai.Transcriber implementations.
//
// Local runs a whisper.cpp binary through an executor.Executor, converting
// non-WAV input with ffmpeg first. API calls the OpenAI audio transcription
// endpoint.
package whisper
