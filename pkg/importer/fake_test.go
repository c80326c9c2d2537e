package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/yahsan2/backlog-import/pkg/backlog"
)

type fakeClient struct {
	md        *backlog.Metadata
	issues    map[string]*backlog.Issue
	drafts    []backlog.IssueDraft
	lookups   []string
	nextID    int
	failOn    string
	finalized []string
}

func newFakeClient(md *backlog.Metadata) *fakeClient {
	return &fakeClient{
		md:     md,
		issues: make(map[string]*backlog.Issue),
		nextID: 100,
	}
}

func (f *fakeClient) addIssue(key string, id int, parentID *int) {
	f.issues[key] = &backlog.Issue{ID: id, IssueKey: key, ParentIssueID: parentID}
}

func (f *fakeClient) GetProject(ctx context.Context, projectKey string) (*backlog.Project, error) {
	if f.md.Project.ProjectKey != projectKey {
		return nil, backlog.NewNotFoundError("project "+projectKey, nil)
	}
	return f.md.Project, nil
}

func (f *fakeClient) GetIssueTypes(ctx context.Context, projectID int) ([]backlog.IssueType, error) {
	return f.md.IssueTypes, nil
}

func (f *fakeClient) GetCustomFields(ctx context.Context, projectID int) ([]backlog.CustomField, error) {
	return f.md.CustomFields, nil
}

func (f *fakeClient) GetCategories(ctx context.Context, projectID int) ([]backlog.Category, error) {
	return f.md.Categories, nil
}

func (f *fakeClient) GetVersions(ctx context.Context, projectID int) ([]backlog.Version, error) {
	return f.md.Versions, nil
}

func (f *fakeClient) GetPriorities(ctx context.Context) ([]backlog.Priority, error) {
	return f.md.Priorities, nil
}

func (f *fakeClient) GetProjectUsers(ctx context.Context, projectID int) ([]backlog.User, error) {
	return f.md.Users, nil
}

func (f *fakeClient) GetIssue(ctx context.Context, issueKey string) (*backlog.Issue, error) {
	f.lookups = append(f.lookups, issueKey)
	return f.issues[issueKey], nil
}

func (f *fakeClient) CreateIssue(ctx context.Context, draft *backlog.IssueDraft) (*backlog.Issue, error) {
	if draft.Summary == f.failOn {
		return nil, backlog.NewAccessError("access to issue creation denied", errors.New("HTTP 403"))
	}
	f.drafts = append(f.drafts, *draft)
	f.nextID++
	key := fmt.Sprintf("PRJ-%d", len(f.drafts))
	issue := &backlog.Issue{
		ID:            f.nextID,
		IssueKey:      key,
		Summary:       draft.Summary,
		ParentIssueID: draft.ParentIssueID,
		IssueType:     draft.IssueType,
	}
	f.issues[key] = issue
	return issue, nil
}

func (f *fakeClient) FinalizeImport(ctx context.Context, projectKey string) error {
	f.finalized = append(f.finalized, projectKey)
	return nil
}

func (f *fakeClient) IssueURL(issueKey string) string {
	return "https://example.backlog.com/view/" + issueKey
}

type recordingReporter struct {
	warnings []Warning
	created  []string
}

func (r *recordingReporter) Warn(row int, message string) {
	r.warnings = append(r.warnings, Warning{Row: row, Message: message})
}

func (r *recordingReporter) Created(row int, issue *backlog.Issue, parentKey string) {
	r.created = append(r.created, issue.IssueKey)
}

var (
	taskType = backlog.IssueType{ID: 1, Name: "Task"}
	bugType  = backlog.IssueType{ID: 2, Name: "Bug"}
	epicType = backlog.IssueType{ID: 3, Name: "Epic"}
)

func testMetadata() *backlog.Metadata {
	return &backlog.Metadata{
		Project:    &backlog.Project{ID: 7, ProjectKey: "PRJ"},
		IssueTypes: []backlog.IssueType{taskType, bugType, epicType},
		CustomFields: []backlog.CustomField{
			{ID: 10, Name: "Points", TypeID: backlog.CustomFieldNumeric},
			{ID: 11, Name: "Release", TypeID: backlog.CustomFieldDate},
			{ID: 12, Name: "Severity", TypeID: backlog.CustomFieldSingleList, ApplicableIssueTypes: []int{bugType.ID},
				Items: []backlog.CustomFieldItem{{ID: 1, Name: "Minor"}, {ID: 2, Name: "Major"}}},
			{ID: 13, Name: "Tags", TypeID: backlog.CustomFieldMultipleList},
		},
		Categories: []backlog.Category{{ID: 20, Name: "Backend"}, {ID: 21, Name: "Frontend"}},
		Versions:   []backlog.Version{{ID: 30, Name: "v1.0"}, {ID: 31, Name: "Sprint 1"}},
		Priorities: []backlog.Priority{{ID: 2, Name: "High"}, {ID: 3, Name: "Normal"}, {ID: 4, Name: "Low"}},
		Users:      []backlog.User{{ID: 40, UserID: "alice", Name: "Alice"}},
	}
}
