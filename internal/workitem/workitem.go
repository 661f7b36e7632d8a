// Package workitem reads Azure DevOps work items and the signed-in user's
// profile with a personal access token.
package workitem

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Tiliavir/adolog/internal/apperrors"
	"github.com/Tiliavir/adolog/internal/model"
	"github.com/Tiliavir/adolog/internal/settings"
)

const apiVersion = "7.1"

const (
	DefaultBaseURL    = "https://dev.azure.com"
	DefaultProfileURL = "https://app.vssps.visualstudio.com"
)

// Details is the subset of work item fields adolog shows and stores.
type Details struct {
	ID            int
	Title         string
	Type          string
	State         string
	AssignedTo    string
	IterationPath string
	Tags          []string
	Description   string
	Parent        int
	Project       string
	ProjectID     string
	Relations     []Relation
}

type Relation struct {
	Rel  string
	Name string
	URL  string
}

// Ref converts the details to the reference stored with a time log.
func (d Details) Ref(organization string) model.WorkItemRef {
	return model.WorkItemRef{
		ID:           strconv.Itoa(d.ID),
		Title:        d.Title,
		Type:         d.Type,
		Organization: organization,
		Project:      d.Project,
		ProjectID:    d.ProjectID,
	}
}

type identityRef struct {
	DisplayName string `json:"displayName"`
	UniqueName  string `json:"uniqueName"`
}

type fields struct {
	Title         string       `json:"System.Title"`
	Type          string       `json:"System.WorkItemType"`
	State         string       `json:"System.State"`
	AssignedTo    *identityRef `json:"System.AssignedTo"`
	IterationPath string       `json:"System.IterationPath"`
	Tags          string       `json:"System.Tags"`
	Description   string       `json:"System.Description"`
	Parent        int          `json:"System.Parent"`
	TeamProject   string       `json:"System.TeamProject"`
}

type workItemResponse struct {
	ID        int    `json:"id"`
	URL       string `json:"url"`
	Fields    fields `json:"fields"`
	Relations []struct {
		Rel        string `json:"rel"`
		URL        string `json:"url"`
		Attributes struct {
			Name string `json:"name"`
		} `json:"attributes"`
	} `json:"relations"`
}

type profileResponse struct {
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
	ID           string `json:"id"`
}

type Config struct {
	BaseURL    string
	ProfileURL string
	PAT        string
	// If nil, http.DefaultClient is used.
	HTTPClient *http.Client
}

type Client struct {
	baseURL    string
	profileURL string
	pat        string
	client     *http.Client
}

// New returns a client, or a ConfigError when no personal access token is set.
func New(cfg Config) (*Client, error) {
	if cfg.PAT == "" {
		return nil, apperrors.MissingSetting("personal access token")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ProfileURL == "" {
		cfg.ProfileURL = DefaultProfileURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		profileURL: strings.TrimRight(cfg.ProfileURL, "/"),
		pat:        cfg.PAT,
		client:     cfg.HTTPClient,
	}, nil
}

// Get fetches one work item. With relations set the response includes links
// to parents, children and commits.
func (c *Client) Get(ctx context.Context, organization, project string, id int, relations bool) (Details, error) {
	q := url.Values{"api-version": {apiVersion}}
	if relations {
		q.Set("$expand", "relations")
	}
	endpoint := fmt.Sprintf("%s/%s/%s/_apis/wit/workitems/%d?%s",
		c.baseURL, url.PathEscape(organization), url.PathEscape(project), id, q.Encode())

	var resp workItemResponse
	if err := c.get(ctx, "get work item", endpoint, &resp); err != nil {
		return Details{}, err
	}

	d := Details{
		ID:            resp.ID,
		Title:         resp.Fields.Title,
		Type:          resp.Fields.Type,
		State:         resp.Fields.State,
		IterationPath: resp.Fields.IterationPath,
		Tags:          splitTags(resp.Fields.Tags),
		Description:   resp.Fields.Description,
		Parent:        resp.Fields.Parent,
		Project:       resp.Fields.TeamProject,
		ProjectID:     projectIDFromURL(resp.URL),
	}
	if a := resp.Fields.AssignedTo; a != nil {
		d.AssignedTo = a.DisplayName
	}
	for _, r := range resp.Relations {
		d.Relations = append(d.Relations, Relation{Rel: r.Rel, Name: r.Attributes.Name, URL: r.URL})
	}
	return d, nil
}

// Profile fetches the profile of the token owner.
func (c *Client) Profile(ctx context.Context) (settings.Profile, error) {
	endpoint := c.profileURL + "/_apis/profile/profiles/me?api-version=" + apiVersion

	var resp profileResponse
	if err := c.get(ctx, "get profile", endpoint, &resp); err != nil {
		return settings.Profile{}, err
	}
	return settings.Profile{
		DisplayName: resp.DisplayName,
		Email:       resp.EmailAddress,
		ID:          resp.ID,
		FetchedAt:   time.Now().UTC(),
	}, nil
}

func (c *Client) get(ctx context.Context, op, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth("", c.pat)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &apperrors.GatewayError{Operation: op, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apperrors.GatewayError{Operation: op, HTTPStatus: resp.StatusCode, Message: "reading response body", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return &apperrors.GatewayError{Operation: op, HTTPStatus: resp.StatusCode, Message: apiMessage(body, resp.Status)}
	}
	// A rejected PAT is answered with a sign-in page.
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "json") {
		return &apperrors.GatewayError{Operation: op, HTTPStatus: resp.StatusCode, Message: "unexpected " + ct + " response, check the personal access token"}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &apperrors.GatewayError{Operation: op, HTTPStatus: resp.StatusCode, Message: "decoding response", Err: err}
	}
	return nil
}

func apiMessage(body []byte, status string) string {
	var e struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil && e.Message != "" {
		return e.Message
	}
	return status
}

func splitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(s, ";") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// projectIDFromURL picks the project segment out of
// https://dev.azure.com/{org}/{projectId}/_apis/wit/workItems/{id}.
func projectIDFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, p := range parts {
		if p == "_apis" && i > 0 {
			return parts[i-1]
		}
	}
	return ""
}

// ParseURL reads organization, project and id from a work item browser URL.
func ParseURL(raw string) (organization, project string, id int, err error) {
	org, proj, idText, ok := model.ParseWorkItemURL(strings.TrimSpace(raw))
	if !ok || org == "" || proj == "" {
		return "", "", 0, fmt.Errorf("not a work item URL: %q", raw)
	}
	id, err = strconv.Atoi(idText)
	if err != nil {
		return "", "", 0, fmt.Errorf("work item id %q: %w", idText, err)
	}
	return org, proj, id, nil
}
