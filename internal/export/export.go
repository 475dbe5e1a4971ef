package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/jimezsa/vacli/internal/vacancy"
	"github.com/muesli/termenv"
)

type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatTSV      Format = "tsv"
)

// ParseFormat accepts a format name or a file extension.
func ParseFormat(value string) (Format, bool) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(value), ".")) {
	case "", "table":
		return FormatTable, true
	case "csv":
		return FormatCSV, true
	case "tsv":
		return FormatTSV, true
	case "json":
		return FormatJSON, true
	case "md", "markdown":
		return FormatMarkdown, true
	default:
		return "", false
	}
}

type WriteOptions struct {
	ColorEnabled bool
	Hyperlinks   bool
	LinkStyle    LinkStyle
}

type LinkStyle string

const (
	LinkStyleShort LinkStyle = "short"
	LinkStyleFull  LinkStyle = "full"
)

// Row is the flat export shape of one vacancy.
type Row struct {
	Provider       string `json:"provider"`
	ID             string `json:"id"`
	Title          string `json:"title"`
	Area           string `json:"area"`
	SalaryFrom     *int   `json:"salary_from"`
	SalaryTo       *int   `json:"salary_to"`
	Currency       string `json:"currency"`
	Salary         string `json:"salary"`
	Experience     string `json:"experience"`
	Employment     string `json:"employment"`
	URL            string `json:"url"`
	Requirement    string `json:"requirement"`
	Responsibility string `json:"responsibility"`
}

func NewRow(v vacancy.Vacancy) Row {
	row := Row{
		Provider:       string(v.Provider()),
		ID:             v.ID(),
		Title:          v.Title(),
		Area:           v.Area(),
		Currency:       v.Currency(),
		Salary:         vacancy.Salary(v),
		Experience:     v.Experience(),
		Employment:     v.Employment(),
		URL:            v.URL(),
		Requirement:    v.Requirement(),
		Responsibility: v.Responsibility(),
	}
	if from, ok := v.SalaryFrom(); ok {
		row.SalaryFrom = &from
	}
	if to, ok := v.SalaryTo(); ok {
		row.SalaryTo = &to
	}
	return row
}

func WriteVacancies(w io.Writer, vacancies []vacancy.Vacancy, format Format, opts WriteOptions) error {
	rows := make([]Row, 0, len(vacancies))
	for _, v := range vacancies {
		rows = append(rows, NewRow(v))
	}
	switch format {
	case FormatJSON:
		return writeJSON(w, rows)
	case FormatCSV:
		return writeCSV(w, rows, ',')
	case FormatTSV:
		return writeCSV(w, rows, '\t')
	case FormatMarkdown:
		return writeMarkdown(w, rows)
	default:
		return writeTable(w, rows, opts)
	}
}

func writeJSON(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(rows)
}

func writeCSV(w io.Writer, rows []Row, delim rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = delim
	if err := writer.Write(csvHeader()); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(csvRow(row)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeTable(w io.Writer, rows []Row, opts WriteOptions) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(tableHeader(), "\t"))
	output := termenv.NewOutput(w)
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(tableRow(row, output, opts), "\t"))
	}
	return tw.Flush()
}

func writeMarkdown(w io.Writer, rows []Row) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	for _, row := range rows {
		urlLine := "  URL: -"
		if link := specified(row.URL); link != "" {
			urlLine = fmt.Sprintf("  URL: [Open vacancy](<%s>)", link)
		}
		lines := []string{
			fmt.Sprintf("- **%s** (%s)", safe(row.Title), safe(row.Area)),
			fmt.Sprintf("  Salary: %s", safe(row.Salary)),
			fmt.Sprintf("  Provider: %s", safe(row.Provider)),
			urlLine,
		}
		if value := specified(row.Experience); value != "" {
			lines = append(lines, fmt.Sprintf("  Experience: %s", value))
		}
		if value := specified(row.Employment); value != "" {
			lines = append(lines, fmt.Sprintf("  Employment: %s", value))
		}
		if value := specified(row.Requirement); value != "" {
			lines = append(lines, fmt.Sprintf("  Requirements: %s", oneLine(value)))
		}
		if value := specified(row.Responsibility); value != "" {
			lines = append(lines, fmt.Sprintf("  Responsibilities: %s", oneLine(value)))
		}
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func csvHeader() []string {
	return []string{
		"provider",
		"id",
		"title",
		"area",
		"salary_from",
		"salary_to",
		"currency",
		"experience",
		"employment",
		"url",
		"requirement",
		"responsibility",
	}
}

func csvRow(row Row) []string {
	return []string{
		row.Provider,
		row.ID,
		row.Title,
		row.Area,
		intString(row.SalaryFrom),
		intString(row.SalaryTo),
		row.Currency,
		row.Experience,
		row.Employment,
		row.URL,
		row.Requirement,
		row.Responsibility,
	}
}

func intString(value *int) string {
	if value == nil {
		return ""
	}
	return strconv.Itoa(*value)
}

func safe(value string) string {
	return strings.TrimSpace(value)
}

// specified drops the not-specified placeholder.
func specified(value string) string {
	value = safe(value)
	if value == vacancy.NotSpecified {
		return ""
	}
	return value
}

func oneLine(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

func tableHeader() []string {
	return []string{
		"provider",
		"title",
		"area",
		"salary",
		"url",
	}
}

func tableRow(row Row, output *termenv.Output, opts WriteOptions) []string {
	const linkColor = "#87CEEB"

	link := specified(row.URL)
	displayURL := "-"
	if link != "" {
		displayURL = link
		if opts.LinkStyle == LinkStyleShort && opts.Hyperlinks {
			displayURL = shortURLLabel(link)
		}
		if opts.ColorEnabled {
			displayURL = output.String(displayURL).Foreground(output.Color(linkColor)).String()
		}
		if opts.Hyperlinks {
			displayURL = hyperlink(link, displayURL)
		}
	}
	return []string{
		safe(row.Provider),
		safe(row.Title),
		safe(row.Area),
		safe(row.Salary),
		displayURL,
	}
}

func hyperlink(target string, text string) string {
	const esc = "\x1b"
	return esc + "]8;;" + target + esc + "\\" + text + esc + "]8;;" + esc + "\\"
}

func shortURLLabel(raw string) string {
	const maxLen = 60
	label := strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err == nil {
		host := strings.TrimPrefix(parsed.Host, "www.")
		if host != "" {
			label = host + parsed.Path
		}
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = raw
	}
	if len(label) > maxLen {
		label = label[:maxLen-3] + "..."
	}
	return label
}
