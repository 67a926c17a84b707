package ui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ghaggin/cfptracker/internal/cfplist"
	"github.com/ghaggin/cfptracker/internal/config"
	"github.com/ghaggin/cfptracker/internal/middleware"
	"github.com/ghaggin/cfptracker/internal/session"
	"github.com/ghaggin/cfptracker/internal/template"
	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	flashError = "error"
	flashInfo  = "info"
)

type UI struct {
	log    *zap.Logger
	server *http.Server

	session *session.Manager
	list    *cfplist.View
	flash   *middleware.SessionManager
}

type Params struct {
	fx.In

	Log     *zap.Logger
	Config  *config.Config
	Session *session.Manager
	List    *cfplist.View
	Flash   *middleware.SessionManager
}

func New(p Params) (*UI, error) {
	u := &UI{
		log:     p.Log,
		session: p.Session,
		list:    p.List,
		flash:   p.Flash,
	}

	u.server = &http.Server{
		Addr:              fmt.Sprintf("localhost:%d", p.Config.UI.Port),
		Handler:           u.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return u, nil
}

func (u *UI) Routes() http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.SameOrigin)
	root.Use(u.flash.Wrap)

	root.Get("/", u.home)
	root.Post("/select/{id}", u.toggle)
	root.Post("/notify", u.notify)

	root.Get("/login", u.loginForm)
	root.Post("/login", u.login)
	root.Get("/register", u.registerForm)
	root.Post("/register", u.register)
	root.Post("/logout", u.logout)

	return root
}

// RegisterHooks should be invoked by fx
func RegisterHooks(lc fx.Lifecycle, u *UI) {
	lc.Append(fx.Hook{
		OnStart: u.Start,
		OnStop:  u.server.Shutdown,
	})
}

func (u *UI) Start(_ context.Context) error {
	u.log.Info("serving cfp tracker", zap.String("addr", "http://"+u.server.Addr))
	go func() {
		err := u.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			u.log.Error("error running server", zap.Error(err))
		}
	}()
	return nil
}

func (u *UI) page(r *http.Request, title string) *template.Data {
	td := &template.Data{
		PageTitle: title,
		Flash:     u.flash.PopFlash(r.Context()),
	}
	if user, ok := u.session.User(); ok {
		td.User = &user
	}
	return td
}

func (u *UI) render(w http.ResponseWriter, r *http.Request, tmpl string, td *template.Data) {
	if err := template.Render(w, r, tmpl, td); err != nil {
		u.log.Error("failed rendering template", zap.String("template", tmpl), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (u *UI) home(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var err error
	if q.Get("apply") == "1" {
		patches, perr := filterPatches(q)
		if perr != nil {
			u.flash.PutFlash(r.Context(), flashError, perr.Error())
		}
		err = u.list.SetFilter(r.Context(), patches...)
	} else {
		err = u.list.Query(r.Context())
	}
	if err != nil {
		// the view already logged the cause and carries the failed state
		u.log.Debug("listing query failed", zap.Error(err))
	}

	td := u.page(r, "CFPs")
	td.List = u.list.Snapshot()
	u.render(w, r, "list.html", td)
}

func (u *UI) toggle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	u.list.ToggleSelection(id)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (u *UI) notify(w http.ResponseWriter, r *http.Request) {
	// failures are logged by the view and otherwise invisible
	_ = u.list.SendNotification(r.Context())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (u *UI) loginForm(w http.ResponseWriter, r *http.Request) {
	u.render(w, r, "login.html", u.page(r, "login"))
}

func (u *UI) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	err := u.session.Login(r.Context(), r.PostForm.Get("email"), r.PostForm.Get("password"))
	if err != nil {
		u.flash.PutFlash(r.Context(), flashError, err.Error())
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (u *UI) registerForm(w http.ResponseWriter, r *http.Request) {
	u.render(w, r, "register.html", u.page(r, "register"))
}

func (u *UI) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	err := u.session.Register(r.Context(), r.PostForm.Get("email"), r.PostForm.Get("password"))
	if err != nil {
		u.flash.PutFlash(r.Context(), flashError, err.Error())
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	u.flash.PutFlash(r.Context(), flashInfo, "Welcome!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (u *UI) logout(w http.ResponseWriter, r *http.Request) {
	u.session.Logout(r.Context())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
