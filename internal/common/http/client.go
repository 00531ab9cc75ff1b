package http

import (
	"net"
	"net/http"
	"time"
)

// Client is an http.Client with a bounded dial phase and overall request deadline.
type Client struct {
	httpClient *http.Client
}

// NewClient builds a client whose requests are cut off after timeout.
func NewClient(timeout time.Duration) *Client {
	return NewClientWithDialTimeout(timeout, timeout)
}

// NewClientWithDialTimeout additionally bounds TCP connect and TLS handshake by dialTimeout.
func NewClientWithDialTimeout(dialTimeout, timeout time.Duration) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   dialTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = dialTimeout

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}
