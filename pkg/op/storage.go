package op

import "context"

// PermissionEndpointEndSession is the permission an application must
// hold for its registered post logout redirect URIs to be honored,
// unless enforcement is disabled in the provider config.
const PermissionEndpointEndSession = "ept:logout"

// Application is the registration record of a client, owned by the
// ApplicationStore.
type Application interface {
	GetID() string
	GetPostLogoutRedirectURIs() []string
	GetPermissions() []string
}

// ApplicationStore resolves registered applications for the
// end-session flow. Implementations are queried per request and must
// be safe for concurrent use.
//
// An empty result from FindByPostLogoutRedirectURI is the regular
// "no match" outcome; returned errors are treated as handler faults
// and abort the transaction with a generic server error.
type ApplicationStore interface {
	// FindByPostLogoutRedirectURI returns all applications registered
	// with exactly the given post logout redirect URI.
	FindByPostLogoutRedirectURI(ctx context.Context, uri string) ([]Application, error)

	// HasPermission reports whether the application holds the given
	// permission.
	HasPermission(ctx context.Context, app Application, permission string) (bool, error)
}
