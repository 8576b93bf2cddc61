package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/huangsam/sqlscope/schema"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

func successMessage(mode schema.OutputMode) string {
	switch mode {
	case schema.JSONOut:
		return "Wrote JSON"
	case schema.CSVOut:
		return "Wrote CSV"
	default:
		return "Wrote table"
	}
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writeRows(csvWriter); err != nil {
		return err
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// createFormatter creates the float formatter shared by every output type.
func createFormatter(precision int) func(float64) string {
	return func(v float64) string {
		return fmt.Sprintf("%.*f", precision, v)
	}
}

// featureContribution is one scored feature of a report.
type featureContribution struct {
	Key    schema.BreakdownKey
	Points float64
}

const topNFeatures = 3

// formatTopBreakdown lists the features that contributed most points, highest first.
func formatTopBreakdown(breakdown map[schema.BreakdownKey]float64) string {
	features := make([]featureContribution, 0, len(breakdown))
	for k, v := range breakdown {
		if v > 0 {
			features = append(features, featureContribution{Key: k, Points: v})
		}
	}
	if len(features) == 0 {
		return "Base only"
	}

	sort.Slice(features, func(i, j int) bool {
		if features[i].Points != features[j].Points {
			return features[i].Points > features[j].Points
		}
		return features[i].Key < features[j].Key
	})

	parts := make([]string, 0, topNFeatures)
	for _, f := range features[:min(len(features), topNFeatures)] {
		parts = append(parts, fmt.Sprintf("%s(+%g)", f.Key, f.Points))
	}
	return strings.Join(parts, " > ")
}

// heading prefixes a section title with an emoji when enabled.
func heading(cfg *contract.Config, emoji, title string) string {
	if cfg.UseEmojis {
		return emoji + " " + title
	}
	return title
}

// sortedOwners returns the owners by report count descending, then by name.
func sortedOwners(byOwner map[string]int) []string {
	owners := make([]string, 0, len(byOwner))
	for o := range byOwner {
		owners = append(owners, o)
	}
	sort.Slice(owners, func(i, j int) bool {
		if byOwner[owners[i]] != byOwner[owners[j]] {
			return byOwner[owners[i]] > byOwner[owners[j]]
		}
		return owners[i] < owners[j]
	})
	return owners
}
