package lifecycle

import "fmt"

// DownloadError indicates the bulk-data fetch itself failed. Refresh
// failures are recoverable: the manager stays on the previous snapshot.
type DownloadError struct {
	Source string
	Err    error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %v", e.Source, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// ValidationError indicates a downloaded snapshot was empty or
// unparseable. The download is discarded and never becomes active.
type ValidationError struct {
	Filename string
	Reason   string
	Err      error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid snapshot %s: %s: %v", e.Filename, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid snapshot %s: %s", e.Filename, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
