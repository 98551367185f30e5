package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedFormat marks file types we refuse to parse. The wrapped
// message is user-facing and names the extension.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Text converts an uploaded file into plain text based on its extension.
// Trust is placed in the extension alone; there is no MIME sniffing.
//
//   - .txt, .md   decoded verbatim
//   - .pdf        extracted with all pages merged; empty text is not an error
//   - .doc, .docx, .xlsx  rejected with ErrUnsupportedFormat
//   - anything else       plain-text decode fallback
func Text(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))

	switch ext {
	case "txt", "md":
		return readAll(r)
	case "pdf":
		return pdfText(r)
	case "doc", "docx", "xlsx":
		return "", fmt.Errorf("%w: File type .%s is not fully supported. Please use .txt, .md, or .pdf for best results.", ErrUnsupportedFormat, ext)
	default:
		return readAll(r)
	}
}

func readAll(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read file failed: %w", err)
	}
	return string(b), nil
}

func pdfText(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read pdf failed: %w", err)
	}
	if len(b) == 0 {
		return "", nil
	}

	reader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", fmt.Errorf("open pdf failed: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text failed: %w", err)
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text failed: %w", err)
	}
	return string(out), nil
}
