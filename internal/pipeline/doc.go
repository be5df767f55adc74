// Package pipeline orchestrates slide-deck jobs through their stages:
// download the video, extract distinct frames, assemble the presentation.
// Job state lives in the queue store; the orchestrator owns the transitions.
package pipeline
