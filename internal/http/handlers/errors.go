package handlers

import "errors"

var (
	errNotAuthenticated = errors.New("not authenticated")
	errUploadTooLarge   = errors.New("uploaded file is too large")
)
