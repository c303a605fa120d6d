package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Output formats accepted by --output.
const (
	formatTable  = "table"
	formatJSON   = "json"
	formatNDJSON = "ndjson"

	tabPadding = 2
)

//nolint:gochecknoglobals // Lookup table.
var outputFormats = []string{formatTable, formatJSON, formatNDJSON}

func checkOutputFormat(format string) error {
	if !slices.Contains(outputFormats, format) {
		return fmt.Errorf("unsupported output format %q (use table, json or ndjson)", format)
	}
	return nil
}

// newPrinter returns the printer used for human-readable numbers.
func newPrinter() *message.Printer {
	return message.NewPrinter(language.English)
}

// renderJSON writes v as indented JSON.
func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderNDJSON writes every element of values on its own line.
func renderNDJSON[T any](w io.Writer, values []T) error {
	enc := json.NewEncoder(w)
	for _, v := range values {
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return nil
}
