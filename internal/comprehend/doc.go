// Package comprehend drives tier escalation for one video.
//
// An Analyzer owns the three tier backends for the life of the process and
// attempts them in strictly ascending order: captions, then audio
// transcription, then audio plus visual analysis. A soft failure moves to
// the next tier when escalation is allowed; anything else ends the call.
// Progress is pushed to an optional Sink as structured Events.
package comprehend
