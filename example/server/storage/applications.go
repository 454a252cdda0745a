// Package storage provides an in-memory application store for the
// example server. It is not meant for production use.
package storage

import (
	"context"
	"sync"

	"github.com/ganhammar/openiddict-core/pkg/op"
)

type Application struct {
	ID                     string
	PostLogoutRedirectURIs []string
	Permissions            []string
}

func (a *Application) GetID() string {
	return a.ID
}

func (a *Application) GetPostLogoutRedirectURIs() []string {
	return a.PostLogoutRedirectURIs
}

func (a *Application) GetPermissions() []string {
	return a.Permissions
}

// ApplicationStore keeps registered applications in memory. Lookups
// return applications in registration order.
type ApplicationStore struct {
	lock  sync.RWMutex
	order []string
	apps  map[string]*Application
}

func NewApplicationStore(apps ...*Application) *ApplicationStore {
	s := &ApplicationStore{
		apps: make(map[string]*Application),
	}
	for _, app := range apps {
		s.Register(app)
	}
	return s
}

// Register adds an application, replacing any existing one with the
// same id.
func (s *ApplicationStore) Register(app *Application) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.apps[app.ID]; !ok {
		s.order = append(s.order, app.ID)
	}
	s.apps[app.ID] = app
}

func (s *ApplicationStore) FindByPostLogoutRedirectURI(ctx context.Context, uri string) ([]op.Application, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	var matches []op.Application
	for _, id := range s.order {
		app := s.apps[id]
		for _, registered := range app.PostLogoutRedirectURIs {
			if registered == uri {
				matches = append(matches, app)
				break
			}
		}
	}
	return matches, nil
}

func (s *ApplicationStore) HasPermission(ctx context.Context, app op.Application, permission string) (bool, error) {
	for _, granted := range app.GetPermissions() {
		if granted == permission {
			return true, nil
		}
	}
	return false, nil
}
