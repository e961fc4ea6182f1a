package httputils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// RoundTripFunc is used to override the client transport if needed.
// This func implements http.RoundTripper interface.
type RoundTripFunc func(req *http.Request) *http.Response

// RoundTrip will execute the round tripper func.
func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

// ResponseJSON returns an HTTP response with the given status code and the given value as the JSON body.
//
// Byte slices and strings are used as the body as is.
func ResponseJSON(status int, response any) (*http.Response, error) {
	var marshalled []byte
	var err error

	switch asserted := response.(type) {
	case []byte:
		marshalled = asserted
	case string:
		marshalled = []byte(asserted)
	default:
		marshalled, err = json.Marshal(response)
		if err != nil {
			return nil, fmt.Errorf("error in json.Marshal call: %w", err)
		}
	}

	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(marshalled)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}, nil
}

// RoundTripperRoutes returns a round tripper that serves JSON responses keyed by the request's host + path.
// Unknown routes get a 404.
func RoundTripperRoutes(routes map[string]*http.Response) RoundTripFunc {
	return func(req *http.Request) *http.Response {
		if res, ok := routes[req.URL.Host+req.URL.Path]; ok {
			res.Request = req
			return res
		}
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(bytes.NewReader(nil)),
			Header:     http.Header{},
			Request:    req,
		}
	}
}
