package model

import (
	"fmt"
	"net/url"
	"regexp"
)

// WorkItemRef points at an Azure DevOps work item. It is derived data:
// backends store its fields flat, and it can be rebuilt from a work item URL.
type WorkItemRef struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Type         string `json:"type"`
	Organization string `json:"organization"`
	Project      string `json:"project"`
	ProjectID    string `json:"projectId"`
}

const workItemURLBase = "https://dev.azure.com"

var workItemURLPattern = regexp.MustCompile(`^https://dev\.azure\.com/([^/]*)/([^/]*)/_workitems/edit/([^/?#]+)`)

// URL builds the browser link of the work item. The project segment uses
// ProjectID when set, otherwise the project name.
func (w WorkItemRef) URL() string {
	if w.ID == "" {
		return ""
	}
	project := w.ProjectID
	if project == "" {
		project = w.Project
	}
	return fmt.Sprintf("%s/%s/%s/_workitems/edit/%s",
		workItemURLBase, url.PathEscape(w.Organization), url.PathEscape(project), url.PathEscape(w.ID))
}

// ParseWorkItemURL extracts organization, project segment and id from
// https://dev.azure.com/{org}/{project}/_workitems/edit/{id}. Organization and
// project may be empty; callers taking user input check for that.
func ParseWorkItemURL(raw string) (org, project, id string, ok bool) {
	m := workItemURLPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", "", "", false
	}
	org, err := url.PathUnescape(m[1])
	if err != nil {
		return "", "", "", false
	}
	project, err = url.PathUnescape(m[2])
	if err != nil {
		return "", "", "", false
	}
	id, err = url.PathUnescape(m[3])
	if err != nil {
		return "", "", "", false
	}
	return org, project, id, true
}
