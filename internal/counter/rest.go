package counter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// restStore talks to an Upstash-compatible REST key-value API (the protocol
// behind Vercel KV): GET {base}/{command}/{args...} with a bearer token,
// answering {"result": ...} or {"error": "..."}.
type restStore struct {
	client  *fasthttp.Client
	baseURL string
	token   string
}

type restEnvelope struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

func openREST(rawURL, token string) (*restStore, error) {
	if token == "" {
		return nil, errors.New("rest store requires a token")
	}
	return &restStore{
		client: &fasthttp.Client{
			Name:                "folio",
			ReadTimeout:         5 * time.Second,
			WriteTimeout:        5 * time.Second,
			MaxIdleConnDuration: time.Minute,
		},
		baseURL: strings.TrimSuffix(rawURL, "/"),
		token:   token,
	}, nil
}

func (s *restStore) Get(ctx context.Context, key string) (int64, bool, error) {
	result, err := s.call(ctx, "get", key)
	if err != nil {
		return 0, false, err
	}
	if isNull(result) {
		return 0, false, nil
	}
	val, err := parseRESTInt(result)
	if err != nil {
		return 0, false, err
	}
	return val, true, nil
}

func (s *restStore) Incr(ctx context.Context, key string) (int64, error) {
	result, err := s.call(ctx, "incr", key)
	if err != nil {
		return 0, err
	}
	return parseRESTInt(result)
}

func (s *restStore) SeedIfAbsent(ctx context.Context, key string, seed int64) error {
	// A null result means the key already existed, which is fine.
	_, err := s.call(ctx, "set", key, strconv.FormatInt(seed, 10), "nx")
	return err
}

func (s *restStore) Ping(ctx context.Context) error {
	_, err := s.call(ctx, "ping")
	return err
}

func (s *restStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *restStore) call(ctx context.Context, command string, args ...string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parts := make([]string, 0, len(args)+1)
	parts = append(parts, command)
	for _, arg := range args {
		parts = append(parts, url.PathEscape(arg))
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.SetRequestURI(s.baseURL + "/" + strings.Join(parts, "/"))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+s.token)
	req.Header.Set(fasthttp.HeaderCacheControl, "no-store")

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = s.client.DoDeadline(req, resp, deadline)
	} else {
		err = s.client.Do(req, resp)
	}
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", command, err)
	}

	var envelope restEnvelope
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, fmt.Errorf("%s: malformed response (status %d): %w", command, resp.StatusCode(), err)
	}
	if envelope.Error != "" {
		return nil, fmt.Errorf("%s: %s (status %d)", command, envelope.Error, resp.StatusCode())
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d", command, resp.StatusCode())
	}
	return envelope.Result, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// parseRESTInt accepts both JSON numbers and numeric strings; GET returns the
// stored value as a string while INCR returns a number.
func parseRESTInt(raw json.RawMessage) (int64, error) {
	if isNull(raw) {
		return 0, errors.New("empty result")
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return strconv.ParseInt(str, 10, 64)
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("non-integer result %s", raw)
	}
	return n, nil
}
