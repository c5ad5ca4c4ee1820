package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/hirotachi/the-void/pkg/utils"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// TokenSource supplies the bearer token sent with every data request.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// APIError is the error body returned by the hosted data API.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("backend error %d: %s", e.Status, e.Message)
}

// RESTStore talks to a hosted relational data API over HTTP.
type RESTStore struct {
	BaseURL    string
	APIKey     string
	Tokens     TokenSource
	HTTPClient *http.Client
}

func NewRESTStore(baseURL, apiKey string, tokens TokenSource, httpClient *http.Client) *RESTStore {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RESTStore{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		Tokens:     tokens,
		HTTPClient: httpClient,
	}
}

func (s *RESTStore) InsertMessage(ctx context.Context, content string) error {
	body, err := json.Marshal([]map[string]string{{"content": content}})
	if err != nil {
		return fmt.Errorf("could not marshal message: %w", err)
	}
	req, err := s.newRequest(ctx, http.MethodPost, nil, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(utils.PreferHeader, utils.PreferReturnMinimal)
	resp, err := s.do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (s *RESTStore) CountVerified(ctx context.Context) (int, error) {
	query := url.Values{}
	query.Set("select", "id")
	query.Set("verified", "eq.true")
	query.Set("limit", "0")
	req, err := s.newRequest(ctx, http.MethodGet, query, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set(utils.PreferHeader, utils.PreferCountExact)
	resp, err := s.do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return utils.ParseContentRange(resp.Header.Get(utils.ContentRangeHeader))
}

func (s *RESTStore) FetchAtOffset(ctx context.Context, offset int) (*Message, error) {
	query := url.Values{}
	query.Set("select", "content")
	query.Set("verified", "eq.true")
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", "1")
	req, err := s.newRequest(ctx, http.MethodGet, query, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var rows []*Message
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("could not decode messages: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (s *RESTStore) newRequest(ctx context.Context, method string, query url.Values, body io.Reader) (*http.Request, error) {
	endpoint := s.BaseURL + utils.RestPath + utils.MessagesTable
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("could not build request: %w", err)
	}
	token := s.APIKey
	if s.Tokens != nil {
		if token, err = s.Tokens.AccessToken(ctx); err != nil {
			return nil, fmt.Errorf("could not get access token: %w", err)
		}
	}
	req.Header.Set(utils.APIKeyHeader, s.APIKey)
	req.Header.Set(utils.AuthorizationHeader, "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (s *RESTStore) do(req *http.Request) (*http.Response, error) {
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	apiErr := &APIError{Status: resp.StatusCode}
	data, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(data))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}
	return nil, apiErr
}
