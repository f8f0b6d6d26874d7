// Package extract defines the contract every tier backend satisfies.
//
// A backend turns a video reference into an Output (text, ordered timed
// segments, language, optional duration and, for the visual tier, OCR
// frames). Failures are reported as *Error values tagged with a Kind and a
// Severity: soft failures are tier-scoped and may trigger escalation, hard
// failures always abort the analysis. Classify is the single place that
// turns an arbitrary error into that tag.
package extract
