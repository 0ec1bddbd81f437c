package domain

import "errors"

var (
	ErrMissingCredential  = errors.New("image generation api key is not configured")
	ErrNoBasePhoto        = errors.New("no base photo uploaded")
	ErrGenerationFailed   = errors.New("generation failed, please retry")
	ErrEmptyResult        = errors.New("generation returned no image")
	ErrGenerationInFlight = errors.New("generation already in progress")
	ErrSessionNotFound    = errors.New("session not found")
	ErrWallLocked         = errors.New("wall cannot be toggled without a mask")
	ErrInvalidColor       = errors.New("invalid color")
	ErrUnknownPart        = errors.New("unknown exterior part")
	ErrUnsupportedMedia   = errors.New("unsupported media type")
	ErrEditorNotOpen      = errors.New("mask editor is not open")
	ErrNoResult           = errors.New("no generated image")
	ErrNoMask             = errors.New("no mask saved")
	ErrPhotoChanged       = errors.New("photo changed while generating")
)
