package rosterapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/hotelstaff/roster/modules/roster/domain/aggregates/staff"
	"github.com/hotelstaff/roster/modules/roster/domain/entities/vacation"
	"github.com/hotelstaff/roster/modules/roster/services"
	"github.com/hotelstaff/roster/modules/roster/services/exchange"
)

const BasePath = "/roster/api"

const mergePatchContentType = "application/merge-patch+json"

// ErrTransport marks failures to reach the API or to read its response.
var ErrTransport = errors.New("roster api unreachable")

// APIError is a non-2xx response carrying the server's error body.
type APIError struct {
	Status  int               `json:"-"`
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("roster api %d %s: %s", e.Status, e.Code, e.Message)
}

type Client struct {
	baseURL         *url.URL
	authorization   string
	httpClient      *http.Client
	requestIDHeader string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithAuthorization(v string) Option {
	return func(c *Client) { c.authorization = strings.TrimSpace(v) }
}

func WithRequestIDHeader(h string) Option {
	return func(c *Client) { c.requestIDHeader = h }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("invalid base url: %q", baseURL)
	}
	c := &Client{
		baseURL:         u,
		httpClient:      &http.Client{Timeout: 30 * time.Second},
		requestIDHeader: "X-Request-ID",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + BasePath + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return nil, nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.requestIDHeader != "" {
		req.Header.Set(c.requestIDHeader, uuid.NewString())
	}
	if c.authorization != "" {
		req.Header.Set("Authorization", c.authorization)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, errors.Wrap(ErrTransport, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, errors.Wrap(ErrTransport, err.Error())
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err != nil || strings.TrimSpace(apiErr.Code) == "" {
			apiErr.Code = http.StatusText(resp.StatusCode)
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return resp, respBody, apiErr
	}
	return resp, respBody, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, reqBody any, out any) error {
	var (
		body        io.Reader
		contentType string
	)
	switch b := reqBody.(type) {
	case nil:
	case staff.Patch:
		body, contentType = bytes.NewReader(b), mergePatchContentType
	case vacation.Patch:
		body, contentType = bytes.NewReader(b), mergePatchContentType
	default:
		raw, err := json.Marshal(reqBody)
		if err != nil {
			return errors.Wrap(err, "json marshal request")
		}
		body, contentType = bytes.NewReader(raw), "application/json"
	}

	_, respBody, err := c.do(ctx, method, path, query, contentType, body)
	if err != nil {
		return err
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Wrap(ErrTransport, "json unmarshal response: "+err.Error())
	}
	return nil
}

// ImportStaff uploads a roster file and returns the server's import report.
func (c *Client) ImportStaff(ctx context.Context, filename string, data []byte, format string, dryRun bool) (*exchange.Report, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	q := url.Values{}
	if format != "" {
		q.Set("format", format)
	}
	if dryRun {
		q.Set("dryRun", "true")
	}
	_, body, err := c.do(ctx, http.MethodPost, "/staff/import", q, mw.FormDataContentType(), &buf)
	if err != nil {
		return nil, err
	}
	var report exchange.Report
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, errors.Wrap(ErrTransport, "json unmarshal report: "+err.Error())
	}
	return &report, nil
}

// ExportStaff downloads an encoded selection. The filename comes from the
// Content-Disposition header when the server sends one.
func (c *Client) ExportStaff(ctx context.Context, format string, filters url.Values) (string, []byte, error) {
	q := url.Values{}
	for k, v := range filters {
		q[k] = v
	}
	q.Set("format", format)
	resp, body, err := c.do(ctx, http.MethodGet, "/staff/export", q, "", nil)
	if err != nil {
		return "", nil, err
	}
	filename := "staff." + format
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		filename = params["filename"]
	}
	return filename, body, nil
}

// Repair asks the server to run a repair pass.
func (c *Client) Repair(ctx context.Context) (*services.RepairRun, error) {
	var run services.RepairRun
	if err := c.doJSON(ctx, http.MethodPost, "/repair", nil, nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (c *Client) Staff() *StaffAPI {
	return &StaffAPI{c: c}
}

func (c *Client) Vacations() *VacationAPI {
	return &VacationAPI{c: c}
}

// StaffAPI is the staff service consumed over HTTP.
type StaffAPI struct {
	c *Client
}

func (a *StaffAPI) List(ctx context.Context) ([]staff.Staff, error) {
	var out []staff.Staff
	err := a.c.doJSON(ctx, http.MethodGet, "/staff", nil, nil, &out)
	return out, err
}

func (a *StaffAPI) Get(ctx context.Context, id int64) (staff.Staff, error) {
	var out staff.Staff
	err := a.c.doJSON(ctx, http.MethodGet, "/staff/"+strconv.FormatInt(id, 10), nil, nil, &out)
	return out, err
}

func (a *StaffAPI) Create(ctx context.Context, dto *staff.CreateDTO) (staff.Staff, error) {
	var out staff.Staff
	err := a.c.doJSON(ctx, http.MethodPost, "/staff", nil, dto, &out)
	return out, err
}

func (a *StaffAPI) Update(ctx context.Context, id int64, patch staff.Patch) (staff.Staff, error) {
	var out staff.Staff
	err := a.c.doJSON(ctx, http.MethodPatch, "/staff/"+strconv.FormatInt(id, 10), nil, patch, &out)
	return out, err
}

func (a *StaffAPI) Delete(ctx context.Context, id int64) error {
	return a.c.doJSON(ctx, http.MethodDelete, "/staff/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

// VacationAPI is the vacation service consumed over HTTP.
type VacationAPI struct {
	c *Client
}

func (a *VacationAPI) List(ctx context.Context) ([]vacation.Request, error) {
	var out []vacation.Request
	err := a.c.doJSON(ctx, http.MethodGet, "/vacations", nil, nil, &out)
	return out, err
}

func (a *VacationAPI) Update(ctx context.Context, id int64, patch vacation.Patch) (vacation.Request, error) {
	var out vacation.Request
	err := a.c.doJSON(ctx, http.MethodPatch, "/vacations/"+strconv.FormatInt(id, 10), nil, patch, &out)
	return out, err
}
