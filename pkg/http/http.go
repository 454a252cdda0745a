package http

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"time"
)

type Decoder interface {
	Decode(dst any, src map[string][]string) error
}

type Encoder interface {
	Encode(src any, dst map[string][]string) error
}

func URLEncodeParams(resp any, encoder Encoder) (url.Values, error) {
	values := make(map[string][]string)
	err := encoder.Encode(resp, values)
	if err != nil {
		return nil, err
	}
	return values, nil
}

// MergeQueryParams appends params to the query of the given uri,
// keeping any query it already carries.
func MergeQueryParams(uri *url.URL, params url.Values) string {
	query := uri.Query()
	for param, values := range params {
		for _, value := range values {
			query.Add(param, value)
		}
	}
	uri.RawQuery = query.Encode()
	return uri.String()
}

func StartServer(ctx context.Context, port string) {
	server := &http.Server{Addr: port}
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		err := server.Shutdown(ctxShutdown)
		if err != nil {
			log.Fatalf("Shutdown(): %v", err)
		}
	}()
}
