package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Doer is the transport surface; *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// pipeline is the single choke point every outbound call passes through.
// It resolves the base address from the session snapshot, lets the dialect
// decorate the request with its credential scheme, performs the round trip
// and unwraps the dialect's envelope. Envelope failures come back as
// *RemoteError, anything below the envelope as *TransportError; callers
// never see partially unwrapped data.
type pipeline struct {
	session  SessionSource
	http     Doer
	log      *zap.Logger
	decorate func(creds Credentials, q url.Values, h http.Header)
	unwrap   func(body []byte) (json.RawMessage, error)
}

func (p *pipeline) fetch(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	return p.roundTrip(ctx, http.MethodGet, endpoint, params, nil)
}

func (p *pipeline) roundTrip(ctx context.Context, method, endpoint string, params url.Values, body any) (json.RawMessage, error) {
	creds := p.session.Credentials()

	q := url.Values{}
	for k, vs := range params {
		q[k] = vs
	}
	header := http.Header{}
	header.Set("Accept", "application/json")
	p.decorate(creds, q, header)

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, &TransportError{Op: endpoint, Err: err}
		}
		reqBody = bytes.NewReader(buf)
		header.Set("Content-Type", "application/json")
	}

	requestURL := joinURL(creds.Server, endpoint)
	if enc := q.Encode(); enc != "" {
		requestURL += "?" + enc
	}
	req, err := http.NewRequestWithContext(ctx, method, requestURL, reqBody)
	if err != nil {
		return nil, &TransportError{Op: endpoint, Err: err}
	}
	for k, vs := range header {
		req.Header[k] = vs
	}

	started := time.Now()
	resp, err := p.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: endpoint, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Op: endpoint, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	payload, err := p.unwrap(raw)
	p.log.Debug("round trip",
		zap.String("endpoint", endpoint),
		zap.Duration("duration", time.Since(started)),
		zap.Bool("ok", err == nil),
	)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// decode parses an already-unwrapped payload into dest. The payload passed
// envelope validation, so a parse failure here is a transport-level defect.
func decode(payload json.RawMessage, dest any) error {
	if err := json.Unmarshal(payload, dest); err != nil {
		return &TransportError{Op: "decode payload", Err: err}
	}
	return nil
}

func joinURL(server, endpoint string) string {
	return strings.TrimRight(server, "/") + "/" + endpoint
}
