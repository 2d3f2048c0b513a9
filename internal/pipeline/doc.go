// Package pipeline sequences the conversion stages for one job: deck content
// extraction, narration drafting and refinement, speech synthesis, audio
// embedding, reference document conversion, and video rendering. Transcript
// generation and text-to-speech are injected collaborators; the pipeline only
// owns the rendering and packaging machinery.
package pipeline
