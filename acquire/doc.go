// Package acquire produces transcripts from audio.
//
// Downloader fetches audio tracks with yt-dlp. TranscriptionStage turns each
// audio file in the source directory into a transcript file, skipping audio
// whose transcript already exists.
package acquire
