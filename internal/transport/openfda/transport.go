package openfda

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
)

// bufferedTransport reads the whole response body inside the round trip, so a
// stall mid-body fails the attempt and reaches CheckRetry like a stall before
// the headers. The per-attempt http.Client timeout covers the read.
type bufferedTransport struct {
	base http.RoundTripper
}

func (t *bufferedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	return resp, nil
}
