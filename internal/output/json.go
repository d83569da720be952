package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mergevet/mergevet/internal/model"
)

// JSONWriter emits the full result as indented JSON, for CI pipelines
// and tooling.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, result model.ReviewResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
