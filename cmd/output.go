package cmd

import (
	"encoding/json"
	"io"
)

// ExitError signals a non-zero exit code without printing an error message.
type ExitError struct{ Code int }

func (e *ExitError) Error() string { return "" }

// errExitFormula is returned when a command printed cells holding errors
var errExitFormula = &ExitError{Code: 2}

func jsonPrint(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
