package export

import "errors"

// FailureMessage is shown to the user whenever an export run fails, whatever the cause.
const FailureMessage = "Failed to generate PDF. Try increasing memory or closing other tabs and retry."

var (
	// ErrCapture marks failures while rasterizing the report surface.
	ErrCapture = errors.New("capture failed")

	// ErrEncoding marks failures while re-encoding slices or serializing the document.
	ErrEncoding = errors.New("encoding failed")

	// ErrInProgress is returned when a trigger is fired while its previous run is still loading.
	ErrInProgress = errors.New("export already in progress")

	// ErrFinalized is returned when a document is serialized a second time.
	ErrFinalized = errors.New("document already finalized")
)
