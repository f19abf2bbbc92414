// Package output prints command results as text, tables or JSON, following
// the output.format setting.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	json "github.com/json-iterator/go"

	"github.com/0xAcousticbridge/GAID/pkg/config"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
	FormatText  OutputFormat = "text"
)

var out io.Writer = color.Output

// SetOutput redirects everything this package prints and returns a func
// that restores the previous writer
func SetOutput(w io.Writer) func() {
	prev := out
	out = w
	return func() { out = prev }
}

// Writer returns the writer this package prints to
func Writer() io.Writer {
	return out
}

// GetOutputFormat returns the configured output format
func GetOutputFormat() OutputFormat {
	switch config.GetString("output.format") {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	default:
		return FormatText
	}
}

// ValidateOutputFormat checks if format is valid
func ValidateOutputFormat(format string) bool {
	return format == "json" || format == "table" || format == "text"
}

// Print outputs data in the configured format. Text and table both render
// indented JSON under an optional title.
func Print(title string, data interface{}) error {
	if GetOutputFormat() == FormatJSON {
		return printJSON(data)
	}
	if title != "" {
		color.New(color.Bold).Fprintf(out, "%s:\n", title)
	}
	return printJSON(data)
}

// PrintTable prints rows under headers. In JSON mode data is printed instead,
// so scripts get the full records rather than the rendered cells.
func PrintTable(headers []string, rows [][]string, data interface{}) error {
	if GetOutputFormat() == FormatJSON {
		return printJSON(data)
	}
	if len(rows) == 0 {
		PrintInfo("Nothing to show")
		return nil
	}
	writeTable(headers, rows)
	return nil
}

// Field is one line of a record
type Field struct {
	Key   string
	Value interface{}
}

// PrintRecord outputs a single record. Fields print in the order given.
func PrintRecord(title string, fields []Field) error {
	switch GetOutputFormat() {
	case FormatJSON:
		m := make(map[string]interface{}, len(fields))
		for _, f := range fields {
			m[f.Key] = f.Value
		}
		return printJSON(m)
	case FormatTable:
		rows := make([][]string, 0, len(fields))
		for _, f := range fields {
			rows = append(rows, []string{f.Key, fmt.Sprintf("%v", f.Value)})
		}
		writeTable([]string{"Field", "Value"}, rows)
		return nil
	default:
		if title != "" {
			color.New(color.Bold, color.Underline).Fprintln(out, title)
		}
		bold := color.New(color.Bold)
		for _, f := range fields {
			bold.Fprint(out, f.Key+": ")
			fmt.Fprintf(out, "%v\n", f.Value)
		}
		return nil
	}
}

// PrintMap outputs a map as a record with sorted keys
func PrintMap(title string, record map[string]interface{}) error {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, Field{Key: k, Value: record[k]})
	}
	return PrintRecord(title, fields)
}

// PrintHeading prints a bold section title
func PrintHeading(title string) {
	color.New(color.Bold).Fprintln(out, title)
}

// Println prints plain text
func Println(a ...interface{}) {
	fmt.Fprintln(out, a...)
}

// PrintSuccess prints a success message
func PrintSuccess(msg string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(out, msg+"\n", args...)
}

// PrintError prints an error message
func PrintError(msg string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(out, "Error: "+msg+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(msg string, args ...interface{}) {
	color.New(color.FgCyan).Fprintf(out, msg+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(msg string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(out, "Warning: "+msg+"\n", args...)
}

func printJSON(data interface{}) error {
	s, err := FormatAsPrettyJSON(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, s)
	return err
}

func writeTable(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	bold := color.New(color.Bold)

	header := make([]string, len(headers))
	for i, h := range headers {
		header[i] = bold.Sprint(h)
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}

// FormatAsJSON converts data to a compact JSON string
func FormatAsJSON(data interface{}) (string, error) {
	b, err := json.ConfigCompatibleWithStandardLibrary.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FormatAsPrettyJSON converts data to an indented JSON string
func FormatAsPrettyJSON(data interface{}) (string, error) {
	b, err := json.ConfigCompatibleWithStandardLibrary.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
