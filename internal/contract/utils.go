package contract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/sqlscope/schema"
)

// Label constants shared by every output format.
const (
	CriticalValue = "Critical" // VeryComplex reports
	HighValue     = "High"     // Complex reports
	ModerateValue = "Moderate" // Medium reports
	LowValue      = "Low"      // Simple reports
)

// Color variables for console output.
var (
	CriticalColor = color.New(color.FgRed, color.Bold)     // criticalColor represents standard danger.
	HighColor     = color.New(color.FgMagenta, color.Bold) // highColor represents strong, distinct warning.
	ModerateColor = color.New(color.FgYellow)              // moderateColor represents standard caution, not bold.
	LowColor      = color.New(color.FgCyan)                // lowColor represents informational / low-priority signal.
)

// GetColorLabel returns a colored effort label for console output (table).
func GetColorLabel(c schema.Category) string {
	text := schema.GetPlainLabel(c)

	switch text {
	case CriticalValue:
		return CriticalColor.Sprint(text)
	case HighValue:
		return HighColor.Sprint(text)
	case ModerateValue:
		return ModerateColor.Sprint(text)
	default:
		return LowColor.Sprint(text)
	}
}

// GetRiskColorLabel colors a risk level the same way as effort labels.
func GetRiskColorLabel(r schema.RiskLevel) string {
	switch r {
	case schema.HighRisk:
		return CriticalColor.Sprint(string(r))
	case schema.MediumRisk:
		return ModerateColor.Sprint(string(r))
	default:
		return LowColor.Sprint(string(r))
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the report cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".sqlscope_cache.db"
	}
	return filepath.Join(homeDir, ".sqlscope_cache.db")
}

// GetAnalysisDBFilePath returns the path to the SQLite DB file for analysis storage.
func GetAnalysisDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".sqlscope_analysis.db"
	}
	return filepath.Join(homeDir, ".sqlscope_analysis.db")
}

// TruncateText shortens s to maxWidth runes with a trailing ellipsis.
// Requires maxWidth > 3 so that at least one rune of content survives.
func TruncateText(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

// ResolveSQLArg returns the SQL text of a positional argument.
// An argument starting with @ names a file to read; "-" reads stdin.
func ResolveSQLArg(arg string) (string, error) {
	switch {
	case arg == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read SQL from stdin: %w", err)
		}
		return string(data), nil
	case strings.HasPrefix(arg, "@"):
		path := strings.TrimPrefix(arg, "@")
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read SQL file %s: %w", path, err)
		}
		return string(data), nil
	default:
		return arg, nil
	}
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
