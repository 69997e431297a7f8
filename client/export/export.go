package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Format string

const (
	PDF  Format = "pdf"
	XLSX Format = "xlsx"
)

// ParseFormat accepts "pdf" or "xlsx" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case PDF, XLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want pdf or xlsx)", s)
	}
}

// RenderError is a failed render. Nothing is written when it occurs.
type RenderError struct {
	Format Format
	File   string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.File, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Notifier shows a non-fatal message to the operator.
type Notifier func(msg string)

// Render writes t in format f to a buffer.
func Render(t Table, f Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch f {
	case PDF:
		err = RenderPDF(t, &buf)
	case XLSX:
		err = RenderXLSX(t, &buf)
	default:
		err = fmt.Errorf("unknown export format %q", f)
	}
	if err != nil {
		return nil, &RenderError{Format: f, File: t.Filename(f), Err: err}
	}
	return buf.Bytes(), nil
}

// Save renders t into dir under its fixed filename and returns the path.
// Failures are passed to notify and returned; no partial file is left behind.
func Save(t Table, f Format, dir string, notify Notifier) (string, error) {
	data, err := Render(t, f)
	if err == nil {
		var path string
		path, err = writeFile(dir, t.Filename(f), data)
		if err == nil {
			return path, nil
		}
		err = &RenderError{Format: f, File: t.Filename(f), Err: err}
	}
	if notify != nil {
		notify(fmt.Sprintf("Failed to export %s. Please try again.", strings.ToUpper(string(f))))
	}
	return "", err
}

func writeFile(dir, name string, data []byte) (string, error) {
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}
	return path, nil
}
