// Package client is a Go client for the submarine admin API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/yuanzac/submarine/internal/depttree"
	"github.com/yuanzac/submarine/internal/domain"
)

const tokenHeader = "X-Access-Token"

// APIError is a response with success=false.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("submarine api error: %s (code: %d, status: %d)", e.Message, e.Code, e.Status)
}

type envelope struct {
	Success    bool            `json:"success"`
	Code       int             `json:"code"`
	Message    string          `json:"message"`
	Result     json.RawMessage `json:"result"`
	Attributes map[string]any  `json:"attributes"`
}

// LoginResult is the payload of a successful login.
type LoginResult struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	RealName string `json:"realName"`
	RoleID   string `json:"roleId"`
	Token    string `json:"token"`
}

// TreePage is the department tree. When the server could not build a tree
// from every row Records holds the flat rows and ShowAlert may be set.
type TreePage struct {
	Records   []*depttree.Node
	Total     int
	ShowAlert bool
}

type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
	mu         sync.RWMutex
	token      string
}

func New(baseURL string, logger *zap.Logger) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/json")
	return &Client{httpClient: c, logger: logger}
}

// SetToken uses an existing session token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) request(ctx context.Context) *resty.Request {
	r := c.httpClient.R().SetContext(ctx)
	if t := c.Token(); t != "" {
		r.SetHeader(tokenHeader, t)
	}
	return r
}

func (c *Client) call(req *resty.Request, method, path string, out any) (*envelope, error) {
	var env envelope
	resp, err := req.SetResult(&env).SetError(&env).Execute(method, path)
	if err != nil {
		c.logger.Error("Submarine API call failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}
	if !env.Success {
		return &env, &APIError{Status: resp.StatusCode(), Code: env.Code, Message: env.Message}
	}
	if out != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return &env, fmt.Errorf("failed to decode %s result: %w", path, err)
		}
	}
	return &env, nil
}

// Login authenticates and keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var res LoginResult
	req := c.request(ctx).SetBody(map[string]string{"username": username, "password": password})
	if _, err := c.call(req, resty.MethodPost, "/api/auth/login", &res); err != nil {
		return nil, err
	}
	c.SetToken(res.Token)
	return &res, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if _, err := c.call(c.request(ctx), resty.MethodPost, "/api/auth/logout", nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

func (c *Client) DepartmentTree(ctx context.Context, deptCode, deptName string) (*TreePage, error) {
	var page struct {
		Records []*depttree.Node `json:"records"`
		Total   int              `json:"total"`
	}
	req := c.request(ctx)
	if deptCode != "" {
		req.SetQueryParam("deptCode", deptCode)
	}
	if deptName != "" {
		req.SetQueryParam("deptName", deptName)
	}
	env, err := c.call(req, resty.MethodGet, "/api/sys/dept/tree", &page)
	if err != nil {
		return nil, err
	}
	showAlert, _ := env.Attributes["showAlert"].(bool)
	return &TreePage{Records: page.Records, Total: page.Total, ShowAlert: showAlert}, nil
}

func (c *Client) DepartmentSelectList(ctx context.Context, disableDeptCode string) ([]depttree.SelectEntry, error) {
	var list []depttree.SelectEntry
	req := c.request(ctx)
	if disableDeptCode != "" {
		req.SetQueryParam("disableDeptCode", disableDeptCode)
	}
	if _, err := c.call(req, resty.MethodGet, "/api/sys/dept/queryIdTree", &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) AddDepartment(ctx context.Context, d domain.Department) (*domain.Department, error) {
	var saved domain.Department
	if _, err := c.call(c.request(ctx).SetBody(d), resty.MethodPost, "/api/sys/dept/add", &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// ExportDepartments downloads the xlsx export.
func (c *Client) ExportDepartments(ctx context.Context) ([]byte, error) {
	resp, err := c.request(ctx).Get("/api/sys/dept/export")
	if err != nil {
		return nil, fmt.Errorf("failed to export departments: %w", err)
	}
	if strings.HasPrefix(resp.Header().Get("Content-Type"), "application/json") {
		var env envelope
		if err := json.Unmarshal(resp.Body(), &env); err == nil && !env.Success {
			return nil, &APIError{Status: resp.StatusCode(), Code: env.Code, Message: env.Message}
		}
	}
	return resp.Body(), nil
}
