package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"polls/internal/config"
	"polls/internal/db"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.GinMode = "test"
	return cfg
}

// newPollsServer starts a server on the in-memory store with a frozen clock.
func newPollsServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	return startServer(t, New(nil, testConfig()))
}

func newSQLiteServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	return startServer(t, New(openTestDB(t), testConfig()))
}

func startServer(t *testing.T, srv *Server) (*Server, *httptest.Server) {
	t.Helper()
	srv.clock = func() time.Time { return testNow }
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := db.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name))
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(conn))
	return conn
}

func seedQuestion(t *testing.T, store Store, text string, pubDate time.Time, choices ...string) *db.Question {
	t.Helper()
	question := &db.Question{QuestionText: text, PubDate: pubDate}
	for _, choice := range choices {
		question.Choices = append(question.Choices, db.Choice{ChoiceText: choice})
	}
	require.NoError(t, store.CreateQuestion(context.Background(), question))
	return question
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Timeout: 10 * time.Second,
	}
}

func doRequest(t *testing.T, client *http.Client, ts *httptest.Server, method, path string, form url.Values) *http.Response {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, ts.URL+path, body)
	require.NoError(t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func expectStatus(t *testing.T, resp *http.Response, status int) {
	t.Helper()
	require.Equal(t, status, resp.StatusCode)
}

func addQuestionForm(text, pubDate string, choices ...string) url.Values {
	form := url.Values{}
	form.Set("question_text", text)
	form.Set("pub_date", pubDate)
	form.Set("choice_set-TOTAL_FORMS", fmt.Sprint(len(choices)))
	form.Set("choice_set-INITIAL_FORMS", "0")
	form.Set("choice_set-MIN_NUM_FORMS", "0")
	form.Set("choice_set-MAX_NUM_FORMS", "1000")
	for i, choice := range choices {
		form.Set(fmt.Sprintf("choice_set-%d-choice_text", i), choice)
	}
	return form
}

func choiceVotes(t *testing.T, store Store, questionID uint) map[uint]int {
	t.Helper()
	question, err := store.GetQuestion(context.Background(), questionID)
	require.NoError(t, err)
	votes := make(map[uint]int, len(question.Choices))
	for _, choice := range question.Choices {
		votes[choice.ID] = choice.Votes
	}
	return votes
}
