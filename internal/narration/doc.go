// Package narration defines the narration asset contract shared between the
// external transcript/TTS collaborators and the core pipeline, plus the
// transcript and audio-bundle outputs derived from it.
package narration
