package report

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"energy-dashboard/internal/analytics/domain/consumption"
	"energy-dashboard/internal/observability/metrics"
)

// Export formats.
const (
	FormatText = "txt"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// ErrUnknownFormat is returned for an export format without a renderer.
var ErrUnknownFormat = errors.New("report: unknown format")

// DefaultFormats are written when no format is requested.
var DefaultFormats = []string{FormatText, FormatXLSX, FormatPDF}

// IsFormat reports whether name is a known export format.
func IsFormat(name string) bool {
	for _, f := range DefaultFormats {
		if strings.EqualFold(strings.TrimSpace(name), f) {
			return true
		}
	}
	return false
}

// Render returns the dashboard in one format.
func Render(d consumption.Dashboard, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatText:
		var buf bytes.Buffer
		if err := WriteText(&buf, d); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatXLSX:
		return BuildXLSX(d)
	case FormatPDF:
		return BuildPDF(d)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// FileName is the base name of an export, e.g. PJME_2021-01-01_2021-12-31.pdf.
func FileName(d consumption.Dashboard, format string) string {
	return fmt.Sprintf("%s_%s_%s.%s", d.Region, d.Window.Start, d.Window.End, strings.ToLower(format))
}

// Export writes the dashboard to dir in every format and returns the paths.
func Export(dir string, d consumption.Dashboard, formats ...string) ([]string, error) {
	if len(formats) == 0 {
		formats = DefaultFormats
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("report: create %s: %w", dir, err)
	}

	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		start := time.Now()
		data, err := Render(d, format)
		if err != nil {
			metrics.ObserveExport(format, metrics.ResultError, time.Since(start))
			return paths, err
		}
		path := filepath.Join(dir, FileName(d, format))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			metrics.ObserveExport(format, metrics.ResultError, time.Since(start))
			return paths, fmt.Errorf("report: write %s: %w", path, err)
		}
		metrics.ObserveExport(format, metrics.ResultSuccess, time.Since(start))
		paths = append(paths, path)
	}
	return paths, nil
}
