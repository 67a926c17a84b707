package cfplist

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/ghaggin/cfptracker/internal/api"
	"github.com/ghaggin/cfptracker/internal/config"
	"github.com/ghaggin/cfptracker/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticCreds api.Credential

func (c staticCreds) Credential() api.Credential { return api.Credential(c) }

type fakeBackend struct {
	mu       sync.Mutex
	queries  []url.Values
	creds    []api.Credential
	notified []api.NotifyRequest

	list      func(q url.Values) ([]model.CFP, error)
	notifyErr error
}

func (b *fakeBackend) ListCFPs(_ context.Context, cred api.Credential, q url.Values) ([]model.CFP, error) {
	b.mu.Lock()
	b.queries = append(b.queries, q)
	b.creds = append(b.creds, cred)
	list := b.list
	b.mu.Unlock()

	if list == nil {
		return []model.CFP{}, nil
	}
	return list(q)
}

func (b *fakeBackend) Notify(_ context.Context, _ api.Credential, req api.NotifyRequest) (api.NotifyResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.notified = append(b.notified, req)
	if b.notifyErr != nil {
		return api.NotifyResult{}, b.notifyErr
	}
	return api.NotifyResult{Success: true, SentTo: "#cfps"}, nil
}

func newTestView(b Backend, creds api.CredentialSource) *View {
	return New(Params{
		Log:     zap.NewNop(),
		Config:  &config.Config{},
		Backend: b,
		Creds:   creds,
	})
}

func Test_SetFilter_location(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	b := &fakeBackend{}
	v := newTestView(b, staticCreds(api.Anonymous))

	require.Nil(v.SetFilter(context.Background(), WithLocation("Berlin")))
	require.Nil(v.Query(context.Background()))

	require.Len(b.queries, 2)
	q := b.queries[1]
	assert.Equal("Berlin", q.Get("location"))
	assert.NotContains(q, "target_audience")
	assert.NotContains(q, "event_type")
	assert.NotContains(q, "closing_date")
	assert.Equal("location=Berlin", q.Encode())
}

func Test_SetFilter_merges(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	b := &fakeBackend{}
	v := newTestView(b, staticCreds(api.Anonymous))
	ctx := context.Background()

	closing := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	require.Nil(v.SetFilter(ctx, WithLocation("Berlin"), WithClosingDate(closing)))
	require.Nil(v.SetFilter(ctx, WithEventType("Conference")))

	c := v.Criteria()
	assert.Equal("Berlin", c.Location)
	assert.Equal("Conference", c.EventType)
	assert.Empty(c.TargetAudience)
	require.NotNil(c.ClosingDate)
	assert.True(closing.Equal(*c.ClosingDate))
	assert.Equal("2026-12-01T00:00:00.000Z", b.queries[1].Get("closing_date"))

	require.Nil(v.SetFilter(ctx, WithoutClosingDate(), WithLocation("")))
	last := b.queries[len(b.queries)-1]
	assert.Equal(url.Values{"event_type": {"Conference"}}, last)
}

func Test_Query_states(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	fail := true
	b := &fakeBackend{list: func(url.Values) ([]model.CFP, error) {
		if fail {
			return nil, &api.StatusError{Code: http.StatusInternalServerError}
		}
		return []model.CFP{{ID: 1}}, nil
	}}
	v := newTestView(b, staticCreds(api.Anonymous))
	assert.Equal(Idle, v.Snapshot().State)

	err := v.Query(context.Background())
	require.ErrorIs(err, ErrLoadFailed)
	s := v.Snapshot()
	assert.Equal(Failed, s.State)
	assert.Empty(s.Records)

	fail = false
	require.Nil(v.Query(context.Background()))
	s = v.Snapshot()
	assert.Equal(Loaded, s.State)
	assert.Len(s.Records, 1)
}

func Test_Query_credentialAtCallTime(t *testing.T) {
	assert := assert.New(t)

	creds := &switchingCreds{}
	b := &fakeBackend{}
	v := newTestView(b, creds)

	assert.Nil(v.Query(context.Background()))
	creds.set(api.Bearer("tok"))
	assert.Nil(v.Query(context.Background()))

	assert.Equal([]api.Credential{api.Anonymous, api.Bearer("tok")}, b.creds)
}

type switchingCreds struct {
	mu   sync.Mutex
	cred api.Credential
}

func (s *switchingCreds) set(c api.Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = c
}

func (s *switchingCreds) Credential() api.Credential {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cred
}

func Test_Query_staleResponseDropped(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	slowStarted := make(chan struct{})
	releaseSlow := make(chan struct{})

	b := &fakeBackend{list: func(q url.Values) ([]model.CFP, error) {
		if q.Get("location") == "Slow" {
			close(slowStarted)
			<-releaseSlow
			return []model.CFP{{ID: 100, Location: "Slow"}}, nil
		}
		return []model.CFP{{ID: 1, Location: "Fast"}}, nil
	}}
	v := newTestView(b, staticCreds(api.Anonymous))
	ctx := context.Background()

	slowDone := make(chan error, 1)
	go func() {
		slowDone <- v.SetFilter(ctx, WithLocation("Slow"))
	}()
	<-slowStarted

	require.Nil(v.SetFilter(ctx, WithLocation("Fast")))
	close(releaseSlow)
	require.Nil(<-slowDone)

	s := v.Snapshot()
	assert.Equal(Loaded, s.State)
	require.Len(s.Records, 1)
	assert.Equal(1, s.Records[0].ID)
}

func Test_ToggleSelection_pair(t *testing.T) {
	assert := assert.New(t)

	v := newTestView(&fakeBackend{}, staticCreds(api.Anonymous))
	v.ToggleSelection(3)
	before := v.Snapshot().Selection

	v.ToggleSelection(5)
	assert.True(v.Snapshot().Selected(5))
	v.ToggleSelection(5)

	assert.Equal(before, v.Snapshot().Selection)
	assert.False(v.Snapshot().Selected(5))
}

func Test_SendNotification(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	b := &fakeBackend{}
	v := newTestView(b, staticCreds(api.Bearer("tok")))
	v.ToggleSelection(4)
	v.ToggleSelection(2)

	require.Nil(v.SendNotification(context.Background()))
	require.Len(b.notified, 1)
	assert.Equal([]int{4, 2}, b.notified[0].CFPIDs)
	assert.Empty(v.Snapshot().Selection)
}

func Test_SendNotification_failureKeepsSelection(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	b := &fakeBackend{notifyErr: errors.New("boom")}
	v := newTestView(b, staticCreds(api.Anonymous))
	v.ToggleSelection(7)
	v.ToggleSelection(9)

	require.NotNil(v.SendNotification(context.Background()))
	assert.Equal([]int{7, 9}, v.Snapshot().Selection)
}

func Test_SendNotification_emptyIsNoop(t *testing.T) {
	b := &fakeBackend{}
	v := newTestView(b, staticCreds(api.Anonymous))

	require.Nil(t, v.SendNotification(context.Background()))
	assert.Empty(t, b.notified)
}

func Test_SendNotification_channel(t *testing.T) {
	b := &fakeBackend{}
	v := newTestView(b, staticCreds(api.Anonymous))
	v.SetChannel("C42")
	v.ToggleSelection(1)

	require.Nil(t, v.SendNotification(context.Background()))
	assert.Equal(t, "C42", b.notified[0].ChannelID)
}

// End to end against a fake API server: filter by event type, select one
// of the two returned records and notify.
func Test_notifyScenario(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	var notifyBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/cfps":
			assert.Equal("event_type=Conference", r.URL.RawQuery)
			w.Write([]byte(`[{"id":1,"title":"one","event_type":"Conference"},{"id":2,"title":"two","event_type":"Conference"}]`))
		case "/api/notify":
			assert.Nil(json.NewDecoder(r.Body).Decode(&notifyBody))
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client, err := api.New(api.Params{
		Log:    zap.NewNop(),
		Config: &config.Config{API: config.API{BaseURL: srv.URL, Timeout: time.Second}},
	})
	require.Nil(err)

	v := newTestView(client, staticCreds(api.Bearer("tok")))
	ctx := context.Background()

	require.Nil(v.SetFilter(ctx, WithEventType("Conference")))
	s := v.Snapshot()
	require.Len(s.Records, 2)
	assert.Equal([]int{1, 2}, []int{s.Records[0].ID, s.Records[1].ID})

	v.ToggleSelection(2)
	require.Nil(v.SendNotification(ctx))

	assert.Equal(map[string]any{"cfp_ids": []any{float64(2)}}, notifyBody)
	assert.Empty(v.Snapshot().Selection)
}

func Test_State_String(t *testing.T) {
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "unknown", State(42).String())
}
