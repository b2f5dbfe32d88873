package domain

import "errors"

// Domain errors
var (
	ErrNoFileSelected      = errors.New("no file selected")
	ErrNoServerPath        = errors.New("no uploaded file")
	ErrBusy                = errors.New("operation already in progress")
	ErrUnsupportedFormat   = errors.New("unsupported export format")
	ErrStaleFile           = errors.New("result belongs to a replaced file")
	ErrStorageKeyNotFound  = errors.New("storage key not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrPreviewNotAvailable = errors.New("no preview available")
)

// User-facing messages.
const (
	MsgSelectFileFirst    = "Please select a file first!"
	MsgUploadFailed       = "Upload failed. Unsupported file type. Please upload a PDF, TXT, PNG, or JPG file."
	MsgUploadSucceeded    = "File uploaded successfully!"
	MsgUploadFirst        = "Upload a file first!"
	MsgExtractionFailed   = "Text extraction failed. Please try again."
	MsgInvalidCredentials = "Invalid credentials. Please try again."
	MsgExportFailed       = "Export failed"
	MsgBusy               = "Please wait for the current operation to finish."
)
