package template

import (
	"github.com/ghaggin/cfptracker/internal/cfplist"
	"github.com/ghaggin/cfptracker/internal/middleware"
	"github.com/ghaggin/cfptracker/internal/model"
)

type Data struct {
	PageTitle string
	User      *model.User
	Flash     *middleware.Flash

	// list page
	List cfplist.Snapshot

	// login and register pages
	Email string
}
