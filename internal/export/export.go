// Package export renders a document's comment threads as a standalone
// HTML report.
package export

import (
	"bytes"
	"html/template"
	"strings"
	"time"

	"docxcomments/internal/comments"
)

// ReportData holds the data for report template rendering.
type ReportData struct {
	Title       string
	GeneratedAt time.Time
	Threads     []ReportThread
}

// ReportThread holds one root comment and its replies for the template.
type ReportThread struct {
	Author    string
	Initials  string
	Text      string
	Timestamp time.Time
	Resolved  bool
	Replies   []ReportReply
}

// ReportReply holds one reply for the template.
type ReportReply struct {
	Author    string
	Text      string
	Timestamp time.Time
}

// Status renders the thread's resolution state.
func (t ReportThread) Status() string {
	if t.Resolved {
		return "Resolved"
	}
	return "Open"
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"lower": strings.ToLower,
	"formatDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("Jan 2, 2006 15:04 UTC")
	},
}).Parse(reportHTML))

// FromThreads flattens manager threads into template data.
func FromThreads(title string, threads []comments.Thread, now time.Time) ReportData {
	data := ReportData{Title: title, GeneratedAt: now}
	for _, t := range threads {
		rt := ReportThread{
			Author:    t.Root.Author,
			Initials:  t.Root.Initials,
			Text:      t.Root.Text,
			Timestamp: t.Root.Timestamp,
			Resolved:  t.Resolved(),
		}
		for _, r := range t.Replies {
			rt.Replies = append(rt.Replies, ReportReply{
				Author:    r.Author,
				Text:      r.Text,
				Timestamp: r.Timestamp,
			})
		}
		data.Threads = append(data.Threads, rt)
	}
	return data
}

// RenderHTML executes the report template.
func RenderHTML(data ReportData) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const reportHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; max-width: 800px; margin: 2rem auto; }
    h1 { border-bottom: 2px solid #333; padding-bottom: 0.5rem; }
    .meta { color: #666; font-size: 0.9em; margin-bottom: 2rem; }
    .thread { background: #f5f5f5; padding: 1rem; margin: 1rem 0; border-left: 3px solid #333; }
    .thread.resolved { border-left-color: #2a7; }
    .status { font-size: 0.8em; text-transform: uppercase; color: #666; }
    .reply { margin: 0.5rem 0 0 1.5rem; padding: 0.5rem 1rem; background: #fff; border-left: 2px solid #bbb; }
    .author { font-weight: bold; }
    .when { color: #999; font-size: 0.85em; margin-left: 0.5rem; }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <div class="meta">Comment report | {{formatDate .GeneratedAt}} | {{len .Threads}} thread(s)</div>
  {{range .Threads}}
  <div class="thread {{lower .Status}}">
    <div class="status">{{.Status}}</div>
    <div><span class="author">{{.Author}}{{if .Initials}} ({{.Initials}}){{end}}</span><span class="when">{{formatDate .Timestamp}}</span></div>
    <p>{{.Text}}</p>
    {{range .Replies}}
    <div class="reply">
      <div><span class="author">{{.Author}}</span><span class="when">{{formatDate .Timestamp}}</span></div>
      <p>{{.Text}}</p>
    </div>
    {{end}}
  </div>
  {{else}}
  <p>No comments.</p>
  {{end}}
</body>
</html>`
