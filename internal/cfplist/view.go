package cfplist

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/ghaggin/cfptracker/internal/api"
	"github.com/ghaggin/cfptracker/internal/config"
	"github.com/ghaggin/cfptracker/internal/model"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type State int

const (
	Idle State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// ErrLoadFailed is the only failure the list exposes; the cause is logged.
var ErrLoadFailed = errors.New("failed to load CFPs")

// Backend is the slice of the API client the view needs.
type Backend interface {
	ListCFPs(ctx context.Context, cred api.Credential, query url.Values) ([]model.CFP, error)
	Notify(ctx context.Context, cred api.Credential, req api.NotifyRequest) (api.NotifyResult, error)
}

// Snapshot is a consistent copy of the view for rendering.
type Snapshot struct {
	State     State
	Records   []model.CFP
	Criteria  model.FilterCriteria
	Selection []int
}

func (s Snapshot) Selected(id int) bool {
	for _, sel := range s.Selection {
		if sel == id {
			return true
		}
	}
	return false
}

// View owns the filter criteria and selection set and derives the listing
// query from them. It reads credentials through creds only.
type View struct {
	backend Backend
	creds   api.CredentialSource
	log     *zap.Logger

	mu        sync.Mutex
	criteria  model.FilterCriteria
	state     State
	records   []model.CFP
	issued    uint64
	selection []int
	channel   string
}

type Params struct {
	fx.In

	Log     *zap.Logger
	Config  *config.Config
	Backend Backend
	Creds   api.CredentialSource
}

func New(p Params) *View {
	return &View{
		backend: p.Backend,
		creds:   p.Creds,
		log:     p.Log,
		channel: p.Config.UI.NotifyChannel,
	}
}

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := Snapshot{
		State:     v.state,
		Records:   append([]model.CFP(nil), v.records...),
		Criteria:  v.criteria,
		Selection: append([]int(nil), v.selection...),
	}
	if v.criteria.ClosingDate != nil {
		d := *v.criteria.ClosingDate
		s.Criteria.ClosingDate = &d
	}
	return s
}

func (v *View) Criteria() model.FilterCriteria {
	return v.Snapshot().Criteria
}

// SetFilter applies the patches and re-queries.
func (v *View) SetFilter(ctx context.Context, patches ...Patch) error {
	v.mu.Lock()
	for _, p := range patches {
		p(&v.criteria)
	}
	v.mu.Unlock()

	return v.Query(ctx)
}

// Query lists CFPs for the current criteria. Responses to queries that have
// been superseded by a later Query are dropped.
func (v *View) Query(ctx context.Context) error {
	v.mu.Lock()
	v.issued++
	seq := v.issued
	params := queryParams(v.criteria)
	v.state = Loading
	v.mu.Unlock()

	records, err := v.backend.ListCFPs(ctx, v.creds.Credential(), params)

	v.mu.Lock()
	defer v.mu.Unlock()

	if seq != v.issued {
		v.log.Debug("dropping stale listing response",
			zap.Uint64("seq", seq),
			zap.Uint64("latest", v.issued),
		)
		return nil
	}

	if err != nil {
		v.state = Failed
		v.records = nil
		v.log.Warn("failed loading CFPs", zap.String("query", params.Encode()), zap.Error(err))
		return ErrLoadFailed
	}

	v.state = Loaded
	v.records = records
	return nil
}

// ToggleSelection adds id to the selection or removes it if present.
func (v *View) ToggleSelection(id int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i, sel := range v.selection {
		if sel == id {
			v.selection = append(v.selection[:i], v.selection[i+1:]...)
			return
		}
	}
	v.selection = append(v.selection, id)
}

// SetChannel overrides the notification channel; empty means the server
// default.
func (v *View) SetChannel(channel string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.channel = channel
}

// SendNotification posts the selected ids. On success the selection is
// cleared; on failure it is kept and the error logged.
func (v *View) SendNotification(ctx context.Context) error {
	v.mu.Lock()
	ids := append([]int(nil), v.selection...)
	channel := v.channel
	v.mu.Unlock()

	if len(ids) == 0 {
		return nil
	}

	res, err := v.backend.Notify(ctx, v.creds.Credential(), api.NotifyRequest{
		CFPIDs:    ids,
		ChannelID: channel,
	})
	if err != nil {
		v.log.Error("error sending notification", zap.Ints("cfp_ids", ids), zap.Error(err))
		return err
	}

	v.mu.Lock()
	v.selection = removeAll(v.selection, ids)
	v.mu.Unlock()

	v.log.Info("notification sent",
		zap.Ints("cfp_ids", ids),
		zap.String("sent_to", res.SentTo),
	)
	return nil
}

// removeAll drops the sent ids, keeping anything toggled on while the
// request was in flight.
func removeAll(selection, sent []int) []int {
	out := selection[:0]
	for _, id := range selection {
		found := false
		for _, s := range sent {
			if id == s {
				found = true
				break
			}
		}
		if !found {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
