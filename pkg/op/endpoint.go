package op

import (
	"errors"
	"strings"
)

type Endpoint string

func NewEndpoint(path string) Endpoint {
	return Endpoint(path)
}

func (e Endpoint) Relative() string {
	return relativeEndpoint(string(e))
}

func (e Endpoint) Absolute(host string) string {
	return absoluteEndpoint(host, string(e))
}

var ErrNilEndpoint = errors.New("nil endpoint")

func (e Endpoint) Validate() error {
	if strings.TrimLeft(string(e), "/") == "" {
		return ErrNilEndpoint
	}
	return nil
}

func absoluteEndpoint(host, endpoint string) string {
	return strings.TrimSuffix(host, "/") + relativeEndpoint(endpoint)
}

func relativeEndpoint(endpoint string) string {
	return "/" + strings.TrimPrefix(endpoint, "/")
}
