package output

import (
	"fmt"
	"io"
	"os"

	"github.com/mergevet/mergevet/internal/model"
)

// Writer renders a review result in one format.
type Writer interface {
	Write(w io.Writer, result model.ReviewResult) error
}

// ForFormat returns the writer for the named format.
func ForFormat(format string) (Writer, error) {
	switch format {
	case "markdown":
		return &MarkdownWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "pr-comment":
		return &MarkdownWriter{PRComment: true}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteResult renders the result to outPath, or stdout when outPath
// is empty.
func WriteResult(result model.ReviewResult, format, outPath string) error {
	writer, err := ForFormat(format)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	return writer.Write(w, result)
}
