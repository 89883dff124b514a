package service

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ludo-technologies/cobscn/domain"
	"gopkg.in/yaml.v3"
)

// EncodeJSON returns an indented JSON string for the given value.
func EncodeJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", domain.NewOutputError("failed to marshal JSON", err)
	}
	return string(data), nil
}

// WriteJSON writes indented JSON for the given value to the writer.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return domain.NewOutputError("failed to encode JSON", err)
	}
	return nil
}

// EncodeYAML returns a YAML string for the given value.
func EncodeYAML(v interface{}) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", domain.NewOutputError("failed to marshal YAML", err)
	}
	return string(data), nil
}

// WriteYAML writes YAML for the given value to the writer.
func WriteYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return domain.NewOutputError("failed to encode YAML", err)
	}
	return nil
}

// Standard formatting constants
const (
	HeaderWidth    = 40
	SectionPadding = 2
)

// FormatUtils provides shared text-output formatting for the CLI's
// restructure and check commands.
type FormatUtils struct{}

// NewFormatUtils creates a new format utilities instance
func NewFormatUtils() *FormatUtils {
	return &FormatUtils{}
}

// FormatMainHeader creates a standardized main header
func (f *FormatUtils) FormatMainHeader(title string) string {
	var builder strings.Builder
	builder.WriteString(title + "\n")
	builder.WriteString(strings.Repeat("=", HeaderWidth) + "\n\n")
	return builder.String()
}

// FormatSectionHeader creates a standardized per-section header
func (f *FormatUtils) FormatSectionHeader(title string) string {
	var builder strings.Builder
	builder.WriteString(strings.ToUpper(title) + "\n")
	builder.WriteString(strings.Repeat("-", len(title)) + "\n")
	return builder.String()
}

// FormatLabelWithIndent creates a formatted label with specific indentation
func (f *FormatUtils) FormatLabelWithIndent(indent int, label string, value interface{}) string {
	return fmt.Sprintf("%s%s: %v\n", strings.Repeat(" ", indent), label, value)
}

// FormatWarnings renders a section's non-fatal diagnostics, one line each,
// in the [CODE] location: message shape the reporter package also uses.
func (f *FormatUtils) FormatWarnings(warnings []domain.Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	var builder strings.Builder
	builder.WriteString("warnings:\n")
	for _, w := range warnings {
		loc := w.Section
		if w.Line > 0 {
			loc = fmt.Sprintf("%s:%d", w.Section, w.Line)
		}
		builder.WriteString(fmt.Sprintf("%s[%s] %s: %s\n",
			strings.Repeat(" ", SectionPadding), w.Code, loc, w.Message))
	}
	return builder.String()
}

// FormatSummary renders the run-level rollup, including the label-economy
// counters (every emitted goto should pair with exactly one label).
func (f *FormatUtils) FormatSummary(s domain.Summary) string {
	var builder strings.Builder
	builder.WriteString("SUMMARY\n")
	builder.WriteString(strings.Repeat("-", len("SUMMARY")) + "\n")
	builder.WriteString(f.FormatLabelWithIndent(SectionPadding, "Sections processed", s.SectionsProcessed))
	builder.WriteString(f.FormatLabelWithIndent(SectionPadding, "Sections failed", s.SectionsFailed))
	builder.WriteString(f.FormatLabelWithIndent(SectionPadding, "Gotos emitted", s.GotosEmitted))
	builder.WriteString(f.FormatLabelWithIndent(SectionPadding, "Labels emitted", s.LabelsEmitted))
	builder.WriteString(f.FormatLabelWithIndent(SectionPadding, "Warnings", s.WarningCount))
	return builder.String()
}

// FormatDuration formats duration in milliseconds consistently
func (f *FormatUtils) FormatDuration(durationMs int64) string {
	return fmt.Sprintf("%dms", durationMs)
}
