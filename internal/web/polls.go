package web

import (
	"strings"

	"github.com/a-h/templ"
)

func Index(data IndexData) templ.Component {
	return page("Polls", func(b *strings.Builder) {
		if data.Flash != "" {
			b.WriteString(`      <p class="flash">`)
			b.WriteString(esc(data.Flash))
			b.WriteString("</p>\n")
		}
		b.WriteString("      <h1>Latest polls</h1>\n")
		writeQuestionList(b, data.Questions)
	})
}

func Archive(data ArchiveData) templ.Component {
	return page("Poll archive", func(b *strings.Builder) {
		b.WriteString("      <h1>All polls</h1>\n")
		writeQuestionList(b, data.Questions)
		writePagination(b, data.Pagination)
	})
}

func writePagination(b *strings.Builder, p PaginationData) {
	if p.TotalPages <= 1 {
		return
	}
	b.WriteString(`      <nav class="pagination">`)
	if p.HasPrev {
		b.WriteString(`<a rel="prev" href="`)
		b.WriteString(esc(pageURL(p.BasePath, p.PrevPage, p.PerPage)))
		b.WriteString(`">Previous</a> `)
	}
	b.WriteString(`<span>Page `)
	b.WriteString(itoa(p.Page))
	b.WriteString(` of `)
	b.WriteString(itoa(p.TotalPages))
	b.WriteString(`</span>`)
	if p.HasNext {
		b.WriteString(` <a rel="next" href="`)
		b.WriteString(esc(pageURL(p.BasePath, p.NextPage, p.PerPage)))
		b.WriteString(`">Next</a>`)
	}
	b.WriteString("</nav>\n")
}

func Detail(data DetailData) templ.Component {
	q := data.Question
	return page(q.Text, func(b *strings.Builder) {
		b.WriteString(`      <form action="`)
		b.WriteString(VoteURL(q.ID))
		b.WriteString(`" method="post">
        <fieldset>
          <legend><h1>`)
		b.WriteString(esc(q.Text))
		b.WriteString("</h1></legend>\n")
		if data.ErrorMessage != "" {
			b.WriteString(`          <p class="error"><strong>`)
			b.WriteString(esc(data.ErrorMessage))
			b.WriteString("</strong></p>\n")
		}
		for i, choice := range q.Choices {
			id := "choice" + itoa(i+1)
			b.WriteString(`          <input type="radio" name="choice" id="`)
			b.WriteString(id)
			b.WriteString(`" value="`)
			b.WriteString(utoa(choice.ID))
			b.WriteString(`"/>
          <label for="`)
			b.WriteString(id)
			b.WriteString(`">`)
			b.WriteString(esc(choice.Text))
			b.WriteString("</label><br/>\n")
		}
		b.WriteString(`        </fieldset>
        <input type="submit" value="Vote"/>
      </form>
`)
	})
}

func Results(data ResultsData) templ.Component {
	q := data.Question
	return page(q.Text+" results", func(b *strings.Builder) {
		b.WriteString("      <h1>")
		b.WriteString(esc(q.Text))
		b.WriteString("</h1>\n")
		b.WriteString(`      <ul id="results" data-live="`)
		b.WriteString(LiveResultsURL(q.ID))
		b.WriteString("\">\n")
		for _, choice := range q.Choices {
			b.WriteString(`        <li data-choice="`)
			b.WriteString(utoa(choice.ID))
			b.WriteString(`">`)
			b.WriteString(esc(choice.Text))
			b.WriteString(` -- <span class="votes">`)
			b.WriteString(itoa(choice.Votes))
			b.WriteString(`</span> vote`)
			b.WriteString(pluralize(choice.Votes))
			b.WriteString("</li>\n")
		}
		b.WriteString("      </ul>\n")
		total := q.TotalVotes()
		b.WriteString(`      <p class="total">`)
		b.WriteString(itoa(total))
		b.WriteString(" vote")
		b.WriteString(pluralize(total))
		b.WriteString(" in total</p>\n")
		b.WriteString(`      <a href="`)
		b.WriteString(DetailURL(q.ID))
		b.WriteString(`">Vote again?</a>
      <script>
        (function () {
          const list = document.getElementById("results");
          if (!list || !window.WebSocket) return;
          const scheme = location.protocol === "https:" ? "wss://" : "ws://";
          const socket = new WebSocket(scheme + location.host + list.dataset.live);
          socket.addEventListener("message", (event) => {
            const data = JSON.parse(event.data);
            for (const choice of data.choices || []) {
              const item = list.querySelector('[data-choice="' + choice.id + '"] .votes');
              if (item) item.textContent = choice.votes;
            }
          });
        })();
      </script>
`)
	})
}

func AddQuestion(data AddQuestionData) templ.Component {
	return page("Add a question", func(b *strings.Builder) {
		b.WriteString(`      <h1>Add a question</h1>
      <form action="`)
		b.WriteString(AddQuestionURL())
		b.WriteString("\" method=\"post\">\n")
		writeField(b, data.QuestionText)
		writeField(b, data.PubDate)

		fs := data.Formset
		for _, msg := range fs.NonFormErrors {
			b.WriteString(`        <p class="error">`)
			b.WriteString(esc(msg))
			b.WriteString("</p>\n")
		}
		writeHidden(b, fs.Prefix+"-TOTAL_FORMS", itoa(fs.TotalForms))
		writeHidden(b, fs.Prefix+"-INITIAL_FORMS", itoa(fs.InitialForms))
		writeHidden(b, fs.Prefix+"-MIN_NUM_FORMS", itoa(fs.MinNumForms))
		writeHidden(b, fs.Prefix+"-MAX_NUM_FORMS", itoa(fs.MaxNumForms))
		b.WriteString("        <fieldset class=\"choices\">\n          <legend>Choices</legend>\n")
		for _, field := range fs.Forms {
			writeField(b, field)
		}
		b.WriteString(`        </fieldset>
        <input type="submit" value="Save"/>
      </form>
`)
	})
}

func writeHidden(b *strings.Builder, name, value string) {
	b.WriteString(`        <input type="hidden" name="`)
	b.WriteString(esc(name))
	b.WriteString(`" id="id_`)
	b.WriteString(esc(name))
	b.WriteString(`" value="`)
	b.WriteString(esc(value))
	b.WriteString("\"/>\n")
}

func writeField(b *strings.Builder, field FieldData) {
	b.WriteString("        <p>\n")
	if len(field.Errors) > 0 {
		b.WriteString("          <ul class=\"errorlist\">")
		for _, msg := range field.Errors {
			b.WriteString("<li>")
			b.WriteString(esc(msg))
			b.WriteString("</li>")
		}
		b.WriteString("</ul>\n")
	}
	inputType := field.Type
	if inputType == "" {
		inputType = "text"
	}
	b.WriteString(`          <label for="`)
	b.WriteString(esc(field.ID))
	b.WriteString(`">`)
	b.WriteString(esc(field.Label))
	b.WriteString(`:</label>
          <input type="`)
	b.WriteString(esc(inputType))
	b.WriteString(`" name="`)
	b.WriteString(esc(field.Name))
	b.WriteString(`" id="`)
	b.WriteString(esc(field.ID))
	b.WriteString(`" value="`)
	b.WriteString(esc(field.Value))
	b.WriteString(`"`)
	if field.MaxLength > 0 {
		b.WriteString(` maxlength="`)
		b.WriteString(itoa(field.MaxLength))
		b.WriteString(`"`)
	}
	b.WriteString("/>\n        </p>\n")
}
