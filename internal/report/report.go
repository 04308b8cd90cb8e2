// Package report renders a derived shelf view for export.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"

	"github.com/five82/shelf/internal/booktracker"
	"github.com/five82/shelf/internal/shelf"
)

// Format selects the output encoding.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatYAML     Format = "yaml"
	FormatJSON     Format = "json"
)

// ParseFormat accepts md, markdown, html, yaml, yml and json.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown report format %q (want md, html, yaml or json)", value)
	}
}

// Extension returns the conventional file extension, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// Report is one rendered view plus where its data came from.
type Report struct {
	Title       string
	GeneratedAt time.Time
	FromCache   bool
	FetchedAt   time.Time
	View        shelf.View
}

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

var page = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 56rem; margin: 2rem auto; padding: 0 1rem; }
table { border-collapse: collapse; margin-bottom: 1.5rem; }
th, td { border: 1px solid #ccc; padding: 0.25rem 0.6rem; text-align: left; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// Render writes r to w in the requested format.
func Render(w io.Writer, format Format, r Report) error {
	switch format {
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(r))
		return err
	case FormatHTML:
		return renderHTML(w, r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newDocument(r)); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(newDocument(r)); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

func renderHTML(w io.Writer, r Report) error {
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(r)), &body); err != nil {
		return fmt.Errorf("convert markdown: %w", err)
	}
	data := struct {
		Title string
		Body  template.HTML
	}{
		Title: title(r),
		Body:  template.HTML(body.String()), //nolint: gosec
	}
	if err := page.Execute(w, data); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// Markdown renders the stats, pace, daily totals and book list.
func Markdown(r Report) string {
	v := r.View
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", escape(title(r)))
	b.WriteString(provenance(r))
	b.WriteString("\n\n")

	b.WriteString("## Summary\n\n")
	b.WriteString("| Total | Completed | Reading | Not Started | Avg. Rating | Top Genre |\n")
	b.WriteString("|---:|---:|---:|---:|---:|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %s | %s |\n\n",
		v.Stats.Total, v.Stats.Completed, v.Stats.Reading, v.Stats.NotStarted,
		v.Stats.AvgRating, escape(v.Stats.TopGenre))

	b.WriteString("## Pace\n\n")
	fmt.Fprintf(&b, "- %s\n- %s\n\n", v.Pace.PaceLabel(), v.Pace.StreakLabel())

	b.WriteString("## Daily pages\n\n")
	if len(v.Daily) == 0 {
		b.WriteString("No reading sessions yet.\n\n")
	} else {
		b.WriteString("| Day | Pages |\n|---|---:|\n")
		for _, d := range v.Daily {
			fmt.Fprintf(&b, "| %s | %d |\n", d.Day, d.Pages)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Books (%s, %s)\n\n", v.Filter.Label(), v.Sort.Label())
	if len(v.Books) == 0 {
		b.WriteString("No books match.\n")
		return b.String()
	}
	b.WriteString("| Title | Author | Status | Progress | Rating |\n")
	b.WriteString("|---|---|---|---:|---:|\n")
	for _, book := range v.Books {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			escape(book.Title), escape(book.Author), book.Status,
			progressCell(book), ratingCell(book.Rating))
	}
	return b.String()
}

func title(r Report) string {
	if strings.TrimSpace(r.Title) == "" {
		return "Reading report"
	}
	return r.Title
}

func provenance(r Report) string {
	line := "Generated " + r.GeneratedAt.Format("2006-01-02 15:04 MST")
	if !r.View.Today.Valid() {
		return "_" + line + "_"
	}
	line += " for " + r.View.Today.String()
	if r.FromCache {
		line += ", from data cached " + r.FetchedAt.Format("2006-01-02 15:04 MST")
	}
	return "_" + line + "_"
}

func progressCell(b booktracker.Book) string {
	if b.TotalPages <= 0 {
		return "–"
	}
	return fmt.Sprintf("%d%% (%d/%d)", shelf.BookProgress(b), min(max(b.PagesRead, 0), b.TotalPages), b.TotalPages)
}

func ratingCell(rating int) string {
	if rating <= 0 {
		return shelf.NoData
	}
	return fmt.Sprintf("%d/5", rating)
}

var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "\r", "")

func escape(s string) string {
	return cellEscaper.Replace(s)
}
