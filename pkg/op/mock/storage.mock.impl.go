package mock

import (
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/ganhammar/openiddict-core/pkg/op"
)

func NewApplicationStore(t *testing.T) op.ApplicationStore {
	return NewMockApplicationStore(gomock.NewController(t))
}

// NewApplication returns a mock application answering identity and
// permission queries any number of times.
func NewApplication(t *testing.T, id string, permissions ...string) op.Application {
	m := NewMockApplication(gomock.NewController(t))
	m.EXPECT().GetID().AnyTimes().Return(id)
	m.EXPECT().GetPermissions().AnyTimes().Return(permissions)
	m.EXPECT().GetPostLogoutRedirectURIs().AnyTimes().Return([]string{"https://client.example.com/signed-out"})
	return m
}
