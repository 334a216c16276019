// Package export renders a missing-card report back into the plain-text
// decklist format and delivers it to a file or the system clipboard.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/awray/decklist/internal/cards/decklist"
	"github.com/awray/decklist/internal/reconcile"
)

// Render formats the report in decklist format, one marker line per
// missing copy, so a shortfall of 3 produces 3 identical lines. Pure
// formatting: re-parsing the output as a decklist reproduces the missing
// quantities exactly.
func Render(report reconcile.Report) string {
	var sb strings.Builder
	for _, entry := range report {
		line := decklist.Marker + entry.Key.Name + "\n"
		for i := 0; i < entry.Missing; i++ {
			sb.WriteString(line)
		}
	}
	return sb.String()
}

// MissingFilename returns the export path for a decklist: the decklist
// file's name with a "_missing.txt" suffix, in the same directory.
func MissingFilename(decklistPath string) string {
	dir := filepath.Dir(decklistPath)
	base := filepath.Base(decklistPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+"_missing.txt")
}

// WriteFile writes the rendered report to path.
func WriteFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write missing list: %w", err)
	}
	return nil
}

// WriteClipboard places the rendered report on the system clipboard.
func WriteClipboard(content string) error {
	if err := clipboard.WriteAll(content); err != nil {
		return fmt.Errorf("copy missing list to clipboard: %w", err)
	}
	return nil
}
