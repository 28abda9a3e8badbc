package web

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// page wraps body in the shared document shell and writes it in one call.
func page(title string, body func(b *strings.Builder)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>`)
		b.WriteString(esc(title))
		b.WriteString(`</title>
    <link rel="stylesheet" href="`)
		b.WriteString(esc(assetPath("/static/style.css")))
		b.WriteString(`"/>
  </head>
  <body>
    <nav class="top">
      <a href="`)
		b.WriteString(IndexURL())
		b.WriteString(`">Polls</a>
      <a href="`)
		b.WriteString(ArchiveURL())
		b.WriteString(`">Archive</a>
      <a href="`)
		b.WriteString(AddQuestionURL())
		b.WriteString(`">Add question</a>
    </nav>
    <main class="shell">
`)
		body(&b)
		b.WriteString(`    </main>
  </body>
</html>
`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func NotFound() templ.Component {
	return page("Not found", func(b *strings.Builder) {
		b.WriteString(`      <h1>Not found</h1>
      <p>The page you requested does not exist.</p>
`)
	})
}

func ServerError() templ.Component {
	return page("Server error", func(b *strings.Builder) {
		b.WriteString(`      <h1>Something went wrong</h1>
      <p>Please try again in a moment.</p>
`)
	})
}

func writeQuestionList(b *strings.Builder, questions []QuestionSummary) {
	if len(questions) == 0 {
		b.WriteString("      <p>No polls are available.</p>\n")
		return
	}
	b.WriteString("      <ul class=\"questions\">\n")
	for _, question := range questions {
		b.WriteString(`        <li><a href="`)
		b.WriteString(DetailURL(question.ID))
		b.WriteString(`">`)
		b.WriteString(esc(question.Text))
		b.WriteString(`</a> <time datetime="`)
		b.WriteString(esc(question.PubDate.UTC().Format("2006-01-02T15:04:05Z07:00")))
		b.WriteString(`" title="`)
		b.WriteString(esc(formatTime(question.PubDate)))
		b.WriteString(`">`)
		b.WriteString(esc(relativeTime(question.PubDate)))
		b.WriteString("</time></li>\n")
	}
	b.WriteString("      </ul>\n")
}
