package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serverFactory func(t *testing.T) (*Server, *httptest.Server)

var storeBackends = map[string]serverFactory{
	"memory": newPollsServer,
	"sqlite": newSQLiteServer,
}

func TestRootRedirectsToIndex(t *testing.T) {
	_, ts := newPollsServer(t)
	resp := doRequest(t, newClient(t), ts, http.MethodGet, "/", nil)
	expectStatus(t, resp, http.StatusFound)
	assert.Equal(t, "/polls/", resp.Header.Get("Location"))
}

func TestIndexEmpty(t *testing.T) {
	_, ts := newPollsServer(t)
	resp := doRequest(t, newClient(t), ts, http.MethodGet, "/polls/", nil)
	expectStatus(t, resp, http.StatusOK)
	assert.Contains(t, readBody(t, resp), "No polls are available.")
}

func TestIndexShowsLatestPublished(t *testing.T) {
	for name, factory := range storeBackends {
		t.Run(name, func(t *testing.T) {
			srv, ts := factory(t)
			for i := 1; i <= 7; i++ {
				seedQuestion(t, srv.store, fmt.Sprintf("Question %d", i), testNow.Add(-time.Duration(8-i)*time.Hour))
			}
			seedQuestion(t, srv.store, "Future question", testNow.Add(24*time.Hour))

			resp := doRequest(t, newClient(t), ts, http.MethodGet, "/polls/", nil)
			expectStatus(t, resp, http.StatusOK)
			body := readBody(t, resp)
			assert.NotContains(t, body, "Future question")
			for _, hidden := range []string{"Question 1", "Question 2"} {
				assert.NotContains(t, body, hidden)
			}
			last := -1
			for i := 7; i >= 3; i-- {
				idx := strings.Index(body, fmt.Sprintf("Question %d", i))
				require.GreaterOrEqual(t, idx, 0, "Question %d missing", i)
				require.Greater(t, idx, last, "Question %d out of order", i)
				last = idx
			}
		})
	}
}

func TestArchivePaginates(t *testing.T) {
	srv, ts := newPollsServer(t)
	for i := 1; i <= 25; i++ {
		seedQuestion(t, srv.store, fmt.Sprintf("Archived %02d", i), testNow.Add(-time.Duration(i)*time.Minute))
	}

	resp := doRequest(t, newClient(t), ts, http.MethodGet, "/polls/archive/?page=3&per_page=10", nil)
	expectStatus(t, resp, http.StatusOK)
	body := readBody(t, resp)
	assert.Contains(t, body, "Page 3 of 3")
	assert.Equal(t, 5, strings.Count(body, "<li><a href="))
	assert.Contains(t, body, "Archived 21")
	assert.NotContains(t, body, "Archived 20")
}

func TestDetail(t *testing.T) {
	srv, ts := newPollsServer(t)
	client := newClient(t)
	published := seedQuestion(t, srv.store, "What's new?", testNow.Add(-time.Hour), "Not much", "The sky")
	future := seedQuestion(t, srv.store, "Tomorrow?", testNow.Add(time.Hour), "Maybe")

	resp := doRequest(t, client, ts, http.MethodGet, fmt.Sprintf("/polls/%d/", published.ID), nil)
	expectStatus(t, resp, http.StatusOK)
	body := readBody(t, resp)
	for _, want := range []string{"What&#39;s new?", "Not much", "The sky", fmt.Sprintf(`action="/polls/%d/vote/"`, published.ID)} {
		assert.Contains(t, body, want)
	}

	resp = doRequest(t, client, ts, http.MethodGet, fmt.Sprintf("/polls/%d/", future.ID), nil)
	expectStatus(t, resp, http.StatusNotFound)

	resp = doRequest(t, client, ts, http.MethodGet, "/polls/999/", nil)
	expectStatus(t, resp, http.StatusNotFound)

	resp = doRequest(t, client, ts, http.MethodGet, "/polls/abc/", nil)
	expectStatus(t, resp, http.StatusNotFound)
}

func TestResultsShowsCounts(t *testing.T) {
	srv, ts := newPollsServer(t)
	question := seedQuestion(t, srv.store, "Tabs or spaces?", testNow.Add(-time.Hour), "Tabs", "Spaces")
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		require.NoError(t, srv.store.Vote(ctx, question.ID, question.Choices[1].ID))
	}
	require.NoError(t, srv.store.Vote(ctx, question.ID, question.Choices[0].ID))

	resp := doRequest(t, newClient(t), ts, http.MethodGet, fmt.Sprintf("/polls/%d/results/", question.ID), nil)
	expectStatus(t, resp, http.StatusOK)
	body := readBody(t, resp)
	for _, want := range []string{
		`Tabs -- <span class="votes">1</span> vote<`,
		`Spaces -- <span class="votes">2</span> votes<`,
		"3 votes in total",
		"Vote again?",
	} {
		assert.Contains(t, body, want)
	}

	resp = doRequest(t, newClient(t), ts, http.MethodGet, "/polls/404/results/", nil)
	expectStatus(t, resp, http.StatusNotFound)
}

func TestVoteIncrementsSelectedChoice(t *testing.T) {
	for name, factory := range storeBackends {
		t.Run(name, func(t *testing.T) {
			srv, ts := factory(t)
			question := seedQuestion(t, srv.store, "Best color?", testNow.Add(-time.Hour), "Red", "Green", "Blue")
			before := choiceVotes(t, srv.store, question.ID)
			picked := question.Choices[1].ID

			resp := doRequest(t, newClient(t), ts, http.MethodPost, fmt.Sprintf("/polls/%d/vote/", question.ID), url.Values{
				"choice": {fmt.Sprint(picked)},
			})
			expectStatus(t, resp, http.StatusFound)
			assert.Equal(t, fmt.Sprintf("/polls/%d/results/", question.ID), resp.Header.Get("Location"))

			after := choiceVotes(t, srv.store, question.ID)
			for id, votes := range before {
				want := votes
				if id == picked {
					want++
				}
				assert.Equal(t, want, after[id], "choice %d", id)
			}
		})
	}
}

func TestVoteWithoutValidChoiceShowsError(t *testing.T) {
	for name, factory := range storeBackends {
		t.Run(name, func(t *testing.T) {
			srv, ts := factory(t)
			question := seedQuestion(t, srv.store, "Cats or dogs?", testNow.Add(-time.Hour), "Cats", "Dogs")
			other := seedQuestion(t, srv.store, "Other?", testNow.Add(-time.Hour), "Elsewhere")
			before := choiceVotes(t, srv.store, question.ID)

			cases := map[string]url.Values{
				"missing":        {},
				"empty":          {"choice": {""}},
				"not a number":   {"choice": {"abc"}},
				"unknown":        {"choice": {"9999"}},
				"other question": {"choice": {fmt.Sprint(other.Choices[0].ID)}},
			}
			for label, form := range cases {
				resp := doRequest(t, newClient(t), ts, http.MethodPost, fmt.Sprintf("/polls/%d/vote/", question.ID), form)
				expectStatus(t, resp, http.StatusOK)
				body := readBody(t, resp)
				assert.Contains(t, body, "You didn&#39;t select a choice.", label)
				assert.Contains(t, body, "Cats", label)
				assert.Contains(t, body, "Dogs", label)
			}

			after := choiceVotes(t, srv.store, question.ID)
			assert.Equal(t, before, after)
			assert.Equal(t, 0, choiceVotes(t, srv.store, other.ID)[other.Choices[0].ID])
		})
	}
}

func TestVoteUnknownQuestion(t *testing.T) {
	_, ts := newPollsServer(t)
	resp := doRequest(t, newClient(t), ts, http.MethodPost, "/polls/42/vote/", url.Values{"choice": {"1"}})
	expectStatus(t, resp, http.StatusNotFound)
}

func TestVoteRequiresPost(t *testing.T) {
	srv, ts := newPollsServer(t)
	question := seedQuestion(t, srv.store, "GET me?", testNow.Add(-time.Hour), "No")
	resp := doRequest(t, newClient(t), ts, http.MethodGet, fmt.Sprintf("/polls/%d/vote/", question.ID), nil)
	expectStatus(t, resp, http.StatusMethodNotAllowed)
}

func TestAddQuestionFormRendersExtraChoices(t *testing.T) {
	_, ts := newPollsServer(t)
	resp := doRequest(t, newClient(t), ts, http.MethodGet, "/polls/add/", nil)
	expectStatus(t, resp, http.StatusOK)
	body := readBody(t, resp)
	for _, want := range []string{
		`name="choice_set-TOTAL_FORMS" id="id_choice_set-TOTAL_FORMS" value="3"`,
		`name="choice_set-INITIAL_FORMS" id="id_choice_set-INITIAL_FORMS" value="0"`,
		`name="choice_set-MAX_NUM_FORMS" id="id_choice_set-MAX_NUM_FORMS" value="1000"`,
		`name="choice_set-2-choice_text"`,
		`name="question_text"`,
		`value="2025-06-01 12:00:00"`,
	} {
		assert.Contains(t, body, want)
	}
	assert.NotContains(t, body, `name="choice_set-3-choice_text"`)
}

func TestAddQuestionCreatesAndFlashes(t *testing.T) {
	for name, factory := range storeBackends {
		t.Run(name, func(t *testing.T) {
			srv, ts := factory(t)
			client := newClient(t)

			resp := doRequest(t, client, ts, http.MethodPost, "/polls/add/",
				addQuestionForm("  Favourite editor?  ", "2025-05-01 09:30", "vim", "", "emacs"))
			expectStatus(t, resp, http.StatusFound)
			assert.Equal(t, "/polls/", resp.Header.Get("Location"))

			questions, err := srv.store.LatestPublished(context.Background(), testNow, 5)
			require.NoError(t, err)
			require.Len(t, questions, 1)
			created, err := srv.store.GetQuestion(context.Background(), questions[0].ID)
			require.NoError(t, err)
			assert.Equal(t, "Favourite editor?", created.QuestionText)
			assert.True(t, created.PubDate.Equal(time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)), created.PubDate)
			require.Len(t, created.Choices, 2)
			assert.Equal(t, "vim", created.Choices[0].ChoiceText)
			assert.Equal(t, "emacs", created.Choices[1].ChoiceText)
			for _, choice := range created.Choices {
				assert.Zero(t, choice.Votes)
			}

			resp = doRequest(t, client, ts, http.MethodGet, "/polls/", nil)
			body := readBody(t, resp)
			assert.Contains(t, body, "Question added.")
			assert.Contains(t, body, "Favourite editor?")
			resp = doRequest(t, client, ts, http.MethodGet, "/polls/", nil)
			assert.NotContains(t, readBody(t, resp), "Question added.")
		})
	}
}

func TestAddQuestionInvalidRerenders(t *testing.T) {
	long := strings.Repeat("x", 201)
	cases := []struct {
		name string
		form url.Values
		want string
	}{
		{"blank text", addQuestionForm("   ", "2025-05-01", "A"), "This field is required."},
		{"long text", addQuestionForm(long, "2025-05-01", "A"), "Ensure this value has at most 200 characters (it has 201)."},
		{"missing date", addQuestionForm("Valid?", "", "A"), "This field is required."},
		{"bad date", addQuestionForm("Valid?", "yesterday", "A"), "Enter a valid date/time."},
		{"long choice", addQuestionForm("Valid?", "2025-05-01", "A", long), "Ensure this value has at most 200 characters (it has 201)."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, ts := newPollsServer(t)
			resp := doRequest(t, newClient(t), ts, http.MethodPost, "/polls/add/", tc.form)
			expectStatus(t, resp, http.StatusOK)
			body := readBody(t, resp)
			assert.Contains(t, body, tc.want)
			assert.Contains(t, body, `class="errorlist"`)
			total, err := srv.store.CountPublished(context.Background(), testNow)
			require.NoError(t, err)
			assert.Zero(t, total)
		})
	}
}

func TestAddQuestionKeepsSubmittedValues(t *testing.T) {
	_, ts := newPollsServer(t)
	resp := doRequest(t, newClient(t), ts, http.MethodPost, "/polls/add/", addQuestionForm("", "2025-05-01 10:00", "Keep <me>"))
	expectStatus(t, resp, http.StatusOK)
	body := readBody(t, resp)
	assert.Contains(t, body, `value="Keep &lt;me&gt;"`)
	assert.Contains(t, body, `value="2025-05-01 10:00"`)
}

func TestAddQuestionManagementFormTampered(t *testing.T) {
	srv, ts := newPollsServer(t)
	form := addQuestionForm("Tampered?", "2025-05-01", "A")
	form.Del("choice_set-TOTAL_FORMS")

	resp := doRequest(t, newClient(t), ts, http.MethodPost, "/polls/add/", form)
	expectStatus(t, resp, http.StatusOK)
	body := readBody(t, resp)
	assert.Contains(t, body, "ManagementForm data is missing or has been tampered with.")
	assert.Contains(t, body, `name="choice_set-2-choice_text"`)
	total, err := srv.store.CountPublished(context.Background(), testNow)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestUnknownRouteNotFound(t *testing.T) {
	_, ts := newPollsServer(t)
	resp := doRequest(t, newClient(t), ts, http.MethodGet, "/nope", nil)
	expectStatus(t, resp, http.StatusNotFound)
	assert.Contains(t, readBody(t, resp), "Not found")
}

func TestRequestIDHeader(t *testing.T) {
	_, ts := newPollsServer(t)
	resp := doRequest(t, newClient(t), ts, http.MethodGet, "/healthz", nil)
	expectStatus(t, resp, http.StatusOK)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
