package op

// Config carries the protocol level switches of the provider.
type Config struct {
	// IgnoreEndpointPermissions disables the end-session permission
	// check during redirect URI validation: any application registered
	// with the exact URI is then accepted.
	IgnoreEndpointPermissions bool
}
