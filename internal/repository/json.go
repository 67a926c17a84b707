package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ghaggin/cfptracker/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	errTokenFileIsDir = errors.New("token file is dir")
)

// Data is the on-disk document. Values mirrors a browser key/value store.
type Data struct {
	Values map[string]string `json:"values"`
}

type jsonRepo struct {
	path string
	log  *zap.Logger

	mu   sync.Mutex
	data *Data
}

type jsonParams struct {
	fx.In

	Config *config.Config
	Log    *zap.Logger
}

// NewTokenStore picks the in-memory store for ephemeral runs and the json
// file store otherwise.
func NewTokenStore(p jsonParams) (TokenStore, error) {
	if p.Config.Storage.Ephemeral {
		return NewMemory(), nil
	}
	return NewJSON(p.Config.Storage.TokenPath, p.Log)
}

func NewJSON(path string, log *zap.Logger) (TokenStore, error) {
	r := &jsonRepo{
		path: path,
		log:  log,
		data: &Data{Values: map[string]string{}},
	}

	err := r.readfile()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		// only log, data will be empty and will overwrite on the next save
		r.log.Warn("failed reading json token file", zap.String("path", path), zap.Error(err))
	}

	return r, nil
}

func (r *jsonRepo) readfile() error {
	finfo, err := os.Stat(r.path)
	if err != nil {
		return err
	}

	if finfo.IsDir() {
		return errTokenFileIsDir
	}

	f, err := os.Open(r.path)
	if err != nil {
		return err
	}
	defer f.Close()

	data := &Data{}
	if err := json.NewDecoder(f).Decode(data); err != nil {
		return err
	}
	if data.Values == nil {
		data.Values = map[string]string{}
	}

	r.data = data
	return nil
}

func (r *jsonRepo) writefile() error {
	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}

	b, err := json.MarshalIndent(r.data, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(r.path, b, 0o600)
}

func (r *jsonRepo) Load(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.data.Values[TokenKey]
	if !ok || token == "" {
		return "", ErrNotFound
	}
	return token, nil
}

func (r *jsonRepo) Save(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data.Values[TokenKey] = token
	return r.writefile()
}

func (r *jsonRepo) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data.Values[TokenKey]; !ok {
		return nil
	}

	delete(r.data.Values, TokenKey)
	return r.writefile()
}
