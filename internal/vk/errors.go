package vk

import (
	"errors"
	"fmt"
	"net/url"
)

// Static errors for VK client operations.
var (
	// ErrPlatform is matched by every PlatformError.
	ErrPlatform = errors.New("vk: platform error")
	// ErrUploadURLRequired is returned when a transfer is attempted without a target.
	ErrUploadURLRequired = errors.New("vk: upload URL is required")
	// ErrClientIDRequired is returned when building an authorization URL without an app id.
	ErrClientIDRequired = errors.New("vk: client ID is required")
)

// Stage names one step of the wall photo protocol.
type Stage string

// Protocol stages in execution order.
const (
	StageUploadTarget Stage = "upload_target"
	StageTransfer     Stage = "transfer"
	StageRegister     Stage = "register"
	StagePost         Stage = "post"
)

// Method returns the remote call a stage performs.
func (s Stage) Method() string {
	switch s {
	case StageUploadTarget:
		return "photos.getWallUploadServer"
	case StageTransfer:
		return "upload"
	case StageRegister:
		return "photos.saveWallPhoto"
	case StagePost:
		return "wall.post"
	default:
		return string(s)
	}
}

// PlatformError reports a failed stage. Transport failures, non-2xx
// responses and error envelopes inside 200 responses all end up here.
type PlatformError struct {
	Stage  Stage
	Code   int    // API error_code when the platform supplied one
	Detail string // platform message or transport description
	Err    error  // underlying cause, if any
}

func (e *PlatformError) Error() string {
	msg := fmt.Sprintf("vk: %s (%s) failed: %s", e.Stage, e.Stage.Method(), e.Detail)
	if e.Code != 0 {
		msg = fmt.Sprintf("vk: %s (%s) failed: error %d: %s", e.Stage, e.Stage.Method(), e.Code, e.Detail)
	}
	if e.Err != nil {
		msg += ": " + causeText(e.Err)
	}
	return msg
}

// causeText renders err without the request URL, which carries the
// access token in its query string.
func causeText(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err.Error()
	}
	return err.Error()
}

// Unwrap lets errors.Is match both ErrPlatform and the underlying cause.
func (e *PlatformError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPlatform}
	}
	return []error{ErrPlatform, e.Err}
}

func stageError(stage Stage, code int, detail string, err error) *PlatformError {
	return &PlatformError{Stage: stage, Code: code, Detail: detail, Err: err}
}
