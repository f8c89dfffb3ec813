//go:build wasip1

package wasm

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/extism/go-pdk"
)

var httpMethods = map[string]pdk.HTTPMethod{
	http.MethodGet:     pdk.MethodGet,
	http.MethodHead:    pdk.MethodHead,
	http.MethodPost:    pdk.MethodPost,
	http.MethodPut:     pdk.MethodPut,
	http.MethodPatch:   pdk.MethodPatch,
	http.MethodDelete:  pdk.MethodDelete,
	http.MethodConnect: pdk.MethodConnect,
	http.MethodOptions: pdk.MethodOptions,
	http.MethodTrace:   pdk.MethodTrace,
}

// Transport is an http.RoundTripper that sends requests through the host,
// since a WASI module cannot open sockets. The host must allow the
// destination in its manifest.
type Transport struct{}

// RoundTrip implements http.RoundTripper.
func (Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	method, ok := httpMethods[req.Method]
	if !ok {
		return nil, fmt.Errorf("unsupported HTTP method %q", req.Method)
	}

	out := pdk.NewHTTPRequest(method, req.URL.String())
	for key, values := range req.Header {
		for _, value := range values {
			out.SetHeader(key, value)
		}
	}
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, err
		}
		out.SetBody(body)
	}

	res := out.Send()
	header := http.Header{}
	for key, value := range res.Headers() {
		header.Set(key, value)
	}
	status := int(res.Status())
	body := res.Body()
	return &http.Response{
		Status:        strconv.Itoa(status) + " " + http.StatusText(status),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}

// HTTPClient returns a client that uses Transport.
func HTTPClient() *http.Client {
	return &http.Client{Transport: Transport{}}
}
