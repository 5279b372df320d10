package service

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/mvnparity/domain"
)

// OutputFormatterImpl implements the OutputFormatter interface
type OutputFormatterImpl struct{}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter() *OutputFormatterImpl {
	return &OutputFormatterImpl{}
}

// WriteJSON writes data as JSON to the writer
func WriteJSON(writer io.Writer, data interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteYAML writes data as YAML to the writer
func WriteYAML(writer io.Writer, data interface{}) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}

// WriteParity writes the parity response in the specified format
func (f *OutputFormatterImpl) WriteParity(response *domain.ParityResponse, format domain.OutputFormat, writer io.Writer) error {
	if response == nil || response.Report == nil {
		return domain.NewOutputError("no parity report to write", nil)
	}

	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, response)
	case domain.OutputFormatText, "":
		return f.writeParityText(response, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// writeParityText writes the parity response as plain text
func (f *OutputFormatterImpl) writeParityText(response *domain.ParityResponse, writer io.Writer) error {
	report := response.Report

	fmt.Fprintf(writer, "\n=== Parser Parity Report ===\n\n")
	if response.ProjectRoot != "" {
		fmt.Fprintf(writer, "Project: %s\n", response.ProjectRoot)
	}
	fmt.Fprintf(writer, "Generated: %s\n", response.GeneratedAt)
	fmt.Fprintf(writer, "Duration: %dms\n", response.DurationMs)
	fmt.Fprintf(writer, "Version: %s\n\n", response.Version)

	fmt.Fprintf(writer, "Parsers:\n")
	fmt.Fprintf(writer, "  Tested: %s (%d records)\n", report.TestedParser, report.TestedCount)
	fmt.Fprintf(writer, "  Comparing: %s (%d records)\n", report.ComparingParser, report.ComparingCount)
	fmt.Fprintf(writer, "  Records compared: %d\n\n", report.RecordsCompared)

	if report.Passed() {
		fmt.Fprintf(writer, "Result: PASSED\n")
		fmt.Fprintf(writer, "No discrepancies found.\n")
		return nil
	}

	fmt.Fprintf(writer, "Result: FAILED (%d discrepancies)\n\n", len(report.Discrepancies))

	counts := report.CountByKind()
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	fmt.Fprintf(writer, "By kind:\n")
	for _, k := range kinds {
		fmt.Fprintf(writer, "  %s: %d\n", k, counts[domain.DiscrepancyKind(k)])
	}

	fmt.Fprintf(writer, "\nDiscrepancies:\n")
	for i, d := range report.Discrepancies {
		fmt.Fprintf(writer, "  %d. %s\n", i+1, d.String())
	}

	return nil
}
