package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ghaggin/cfptracker/internal/cfplist"
	"github.com/ghaggin/cfptracker/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseIDs(t *testing.T) {
	require := require.New(t)

	ids, err := parseIDs([]string{"3", "1", "3"})
	require.Nil(err)
	require.Equal([]int{3, 1}, ids)

	_, err = parseIDs([]string{"1", "two"})
	require.Error(err)
}

func Test_renderList(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	err := renderList(&buf, cfplist.Snapshot{
		State: cfplist.Loaded,
		Records: []model.CFP{{
			ID:          4,
			Title:       "Go Days",
			EventName:   "Go Days 2026",
			ClosingDate: model.Timestamp{Time: time.Date(2026, 10, 30, 0, 0, 0, 0, time.UTC)},
			Location:    "Berlin",
			CFPURL:      "https://example.com/cfp",
		}},
	})
	assert.Nil(err)
	out := buf.String()
	assert.Contains(out, "#4")
	assert.Contains(out, "Go Days")
	assert.Contains(out, "Closing: Oct 30, 2026")
	assert.Contains(out, "Event: n/a")
	assert.Contains(out, "Berlin")
	assert.Contains(out, "https://example.com/cfp")

	buf.Reset()
	err = renderList(&buf, cfplist.Snapshot{State: cfplist.Failed})
	assert.ErrorIs(err, cfplist.ErrLoadFailed)
	assert.Contains(buf.String(), "Failed to load CFPs.")

	buf.Reset()
	assert.Nil(renderList(&buf, cfplist.Snapshot{State: cfplist.Loaded}))
	assert.Contains(buf.String(), "No CFPs match")
}

type recordingAPI struct {
	mu    sync.Mutex
	paths []string
}

func (a *recordingAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	a.paths = append(a.paths, r.URL.Path+"?"+r.URL.RawQuery)
	a.mu.Unlock()

	switch r.URL.Path {
	case "/api/cfps":
		w.Write([]byte(`[{"id":9,"title":"Berlin Gophers","location":"Berlin"}]`))
	default:
		w.WriteHeader(http.StatusUnauthorized)
	}
}

func (a *recordingAPI) Paths() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.paths...)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	base := []string{"--ephemeral", "--config", filepath.Join(t.TempDir(), "none.yaml")}
	rootCmd.SetArgs(append(append([]string{args[0]}, base...), args[1:]...))

	err := rootCmd.Execute()
	return out.String(), err
}

func Test_listCommand(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	fake := &recordingAPI{}
	srv := httptest.NewServer(fake)
	defer srv.Close()
	t.Setenv("CFP_API_URL", srv.URL)

	out, err := run(t, "list", "--location", "Berlin")
	require.Nil(err)
	assert.Contains(out, "Berlin Gophers")
	// an ephemeral store has no token, so no whoami call happens
	assert.Equal([]string{"/api/cfps?location=Berlin"}, fake.Paths())
}

func Test_whoamiCommand_loggedOut(t *testing.T) {
	fake := &recordingAPI{}
	srv := httptest.NewServer(fake)
	defer srv.Close()
	t.Setenv("CFP_API_URL", srv.URL)

	out, err := run(t, "whoami")
	require.Nil(t, err)
	assert.Contains(t, out, "Not logged in.")
	assert.Empty(t, fake.Paths())
}

func Test_loginCommand_failure(t *testing.T) {
	fake := &recordingAPI{}
	srv := httptest.NewServer(fake)
	defer srv.Close()
	t.Setenv("CFP_API_URL", srv.URL)

	_, err := run(t, "login", "--email", "a@b.com", "--password", "bad")
	require.Error(t, err)
	assert.Equal(t, "Login failed", err.Error())
}

func Test_writeJSON(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	var buf bytes.Buffer
	require.Nil(writeJSON(&buf, cfplist.Snapshot{
		State: cfplist.Loaded,
		Records: []model.CFP{{
			ID:          4,
			Title:       "Go Days",
			ClosingDate: model.Timestamp{Time: time.Date(2026, 10, 30, 0, 0, 0, 0, time.UTC)},
		}},
	}))

	var got []map[string]any
	require.Nil(json.Unmarshal(buf.Bytes(), &got))
	require.Len(got, 1)
	assert.Equal("Go Days", got[0]["title"])
	assert.Equal("2026-10-30T00:00:00Z", got[0]["closing_date"])
	assert.Nil(got[0]["event_date"])

	buf.Reset()
	require.Nil(writeJSON(&buf, cfplist.Snapshot{State: cfplist.Loaded}))
	assert.Equal("[]\n", buf.String())

	assert.ErrorIs(writeJSON(&buf, cfplist.Snapshot{State: cfplist.Failed}), cfplist.ErrLoadFailed)
}

func Test_listCommand_json(t *testing.T) {
	require := require.New(t)
	t.Cleanup(func() { listCmd.Flags().Set("json", "false") })

	fake := &recordingAPI{}
	srv := httptest.NewServer(fake)
	defer srv.Close()
	t.Setenv("CFP_API_URL", srv.URL)

	out, err := run(t, "list", "--location", "Berlin", "--json")
	require.Nil(err)

	var got []model.CFP
	require.Nil(json.Unmarshal([]byte(out), &got))
	require.Len(got, 1)
	require.Equal(9, got[0].ID)
	require.True(got[0].EventDate.IsZero())
}

func Test_registerCommand(t *testing.T) {
	require := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/users/":
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":3,"email":"new@example.com"}`))
		case "/api/token":
			w.Write([]byte(`{"access_token":"tok-new","token_type":"bearer"}`))
		case "/api/users/me":
			w.Write([]byte(`{"id":3,"email":"new@example.com"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	t.Setenv("CFP_API_URL", srv.URL)

	// the printed email is the server's identity, not the flag
	out, err := run(t, "register", "--email", "New@Example.com", "--password", "pw")
	require.Nil(err)
	require.Contains(out, "Registration successful!")
	require.Contains(out, "Logged in as new@example.com")
}
