// Package devops talks to Azure DevOps work items over its REST API.
package devops

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MackanT/WorkTimer/internal/timer"
)

const apiVersion = "7.0"

// AuthError indicates the PAT was rejected by the organization.
type AuthError struct {
	OrgURL string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication rejected by %s: check the PAT token", e.OrgURL)
}

// RequestError indicates a non-auth failure response from the API.
type RequestError struct {
	URL    string
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request to %s failed with status %d: %s", e.URL, e.Status, e.Body)
}

// Client is a connection to one Azure DevOps organization. Work items are
// addressed organization-wide, so no project name is needed.
type Client struct {
	orgURL string
	pat    string
	http   *http.Client
}

// NewClient creates a client for the given organization URL and PAT token.
func NewClient(orgURL, patToken string) *Client {
	return &Client{
		orgURL: strings.TrimRight(orgURL, "/"),
		pat:    patToken,
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

var _ timer.WorkItemClient = (*Client)(nil)

// Connect verifies the credentials by listing the organization's projects.
func (c *Client) Connect() error {
	url := fmt.Sprintf("%s/_apis/projects?api-version=%s", c.orgURL, apiVersion)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// AddComment appends text to a work item's discussion by patching the
// System.History field.
func (c *Client) AddComment(workItemID int64, text string) error {
	patch := []map[string]any{
		{"op": "add", "path": "/fields/System.History", "value": text},
	}
	body, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("encoding patch document: %w", err)
	}

	url := fmt.Sprintf("%s/_apis/wit/workitems/%d?api-version=%s", c.orgURL, workItemID, apiVersion)
	req, err := http.NewRequest(http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json-patch+json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// do sends the request with PAT basic auth and maps error statuses to
// typed errors. On success the caller owns the response body.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	// Azure DevOps PATs go in the password slot with an empty username.
	req.SetBasicAuth("", c.pat)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		resp.Body.Close()
		return nil, &AuthError{OrgURL: c.orgURL}
	case resp.StatusCode >= 300:
		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		resp.Body.Close()
		return nil, &RequestError{URL: req.URL.String(), Status: resp.StatusCode, Body: snippet(buf.String())}
	}
	return resp, nil
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}

// Registry builds and caches one client per customer that has an
// organization URL and PAT configured.
type Registry struct {
	clients map[string]*Client
}

var _ timer.WorkItemRegistry = (*Registry)(nil)

// NewRegistry creates a registry from customer records. Customers without
// both an organization URL and a PAT token get no client.
func NewRegistry(customers []*timer.Customer) *Registry {
	r := &Registry{clients: make(map[string]*Client)}
	for _, c := range customers {
		if c.OrgURL != "" && c.PATToken != "" {
			r.clients[c.Name] = NewClient(c.OrgURL, c.PATToken)
		}
	}
	return r
}

// ClientFor returns the client for a customer, or nil when the customer
// has no tracker connection.
func (r *Registry) ClientFor(customerName string) timer.WorkItemClient {
	c, ok := r.clients[customerName]
	if !ok {
		return nil
	}
	return c
}

// Verify checks every configured connection and returns the names of
// customers whose credentials were rejected.
func (r *Registry) Verify() map[string]error {
	failures := make(map[string]error)
	for name, client := range r.clients {
		if err := client.Connect(); err != nil {
			failures[name] = err
		}
	}
	return failures
}
