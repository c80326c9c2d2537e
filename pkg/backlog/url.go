package backlog

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var issueKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*-[0-9]+$`)

// URLBuilder builds browser URLs for a space
type URLBuilder struct {
	baseURL string
}

// NewURLBuilder creates a URL builder for a space base URL such as https://example.backlog.com
func NewURLBuilder(baseURL string) *URLBuilder {
	return &URLBuilder{baseURL: strings.TrimRight(baseURL, "/")}
}

// ProjectURL returns the project home URL
func (b *URLBuilder) ProjectURL(projectKey string) string {
	if projectKey == "" {
		return ""
	}
	return fmt.Sprintf("%s/projects/%s", b.baseURL, projectKey)
}

// IssueURL returns the browser URL of an issue
func (b *URLBuilder) IssueURL(issueKey string) string {
	if issueKey == "" {
		return ""
	}
	return fmt.Sprintf("%s/view/%s", b.baseURL, issueKey)
}

// IsIssueKey reports whether s looks like PROJECT-123
func IsIssueKey(s string) bool {
	return issueKeyPattern.MatchString(s)
}

// IssueKeyFromRef returns the issue key of a .../view/KEY URL. Anything else is returned unchanged.
func IssueKeyFromRef(ref string) string {
	if !strings.HasPrefix(ref, "https://") && !strings.HasPrefix(ref, "http://") {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 2 && parts[0] == "view" && IsIssueKey(parts[1]) {
		return parts[1]
	}
	return ref
}
