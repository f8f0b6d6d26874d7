package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/nguyentantai21042004/video-comprehend/internal/config"
	"github.com/nguyentantai21042004/video-comprehend/internal/extract"
	"github.com/nguyentantai21042004/video-comprehend/internal/render"
	"github.com/nguyentantai21042004/video-comprehend/internal/video"
)

const (
	exitOK            = 0
	exitFailure       = 1
	exitInvalidInput  = 2
	exitCaptions      = 3
	exitTranscription = 4
	exitVisual        = 5
)

var (
	errUsage = errors.New("invalid usage")
	// errReported marks errors already shown to the user as a progress event.
	errReported = errors.New("reported")
)

func usageError(err error) error {
	return fmt.Errorf("%w: %w", errUsage, err)
}

type reportedError struct{ err error }

func (e reportedError) Error() string   { return e.err.Error() }
func (e reportedError) Unwrap() []error { return []error{e.err, errReported} }

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	switch {
	case errors.Is(err, errUsage),
		errors.Is(err, config.ErrInvalid),
		errors.Is(err, video.ErrInvalidReference),
		errors.Is(err, render.ErrUnknownFormat):
		return exitInvalidInput
	}

	switch extract.KindOf(err) {
	case extract.KindInvalidTier, extract.KindInvalidReference, extract.KindInvalidConfig:
		return exitInvalidInput
	case extract.KindCaptionsUnavailable:
		return exitCaptions
	case extract.KindTranscriptionFailed:
		return exitTranscription
	case extract.KindVisualAnalysisUnavailable:
		return exitVisual
	}
	return exitFailure
}

// errorTitle is the short label printed ahead of the terminal error.
func errorTitle(err error) string {
	switch exitCode(err) {
	case exitInvalidInput:
		return "Invalid input"
	case exitCaptions:
		return "Caption extraction failed"
	case exitTranscription:
		return "Audio extraction failed"
	case exitVisual:
		return "Visual analysis failed"
	}
	return "Error"
}

func printError(w io.Writer, err error, colorize bool) {
	title := color.New(color.FgRed, color.Bold)
	if colorize {
		title.EnableColor()
	} else {
		title.DisableColor()
	}
	fmt.Fprintf(w, "%s %v\n", title.Sprint(errorTitle(err)+":"), err)
}
