package scryfall

import "fmt"

// Card is the slice of a Scryfall card record this program cares about:
// enough to identify the card and its faces by name. Bulk data rows carry
// many more fields; they are ignored on decode.
type Card struct {
	ID       string     `json:"id"`
	OracleID string     `json:"oracle_id"`
	Name     string     `json:"name"`
	Layout   string     `json:"layout"`
	CardFaces []CardFace `json:"card_faces,omitempty"`
}

// CardFace is one face of a multi-faced card (transform, modal DFC,
// split, adventure).
type CardFace struct {
	Name string `json:"name"`
}

// BulkData describes one downloadable bulk dataset, as returned by the
// /bulk-data endpoints.
type BulkData struct {
	Object      string `json:"object"`
	ID          string `json:"id"`
	Type        string `json:"type"`
	UpdatedAt   string `json:"updated_at"`
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Size        int64  `json:"size"`
	DownloadURI string `json:"download_uri"`
	ContentType string `json:"content_type"`
}

// APIError represents an error response from the Scryfall API.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Details string `json:"details"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("scryfall API error (status %d, code %s): %s", e.Status, e.Code, e.Details)
}

// NotFoundError indicates a 404 from the API.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URL)
}
