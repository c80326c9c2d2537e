package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yahsan2/backlog-import/pkg/backlog"
)

func preparedRows(refs ...string) []PreparedIssue {
	prepared := make([]PreparedIssue, 0, len(refs))
	for i, ref := range refs {
		prepared = append(prepared, PreparedIssue{
			Row: i + 2,
			Draft: &backlog.IssueDraft{
				ProjectID: 7,
				Summary:   "issue " + string(rune('A'+i)),
				IssueType: taskType,
				ParentRef: ref,
			},
		})
	}
	return prepared
}

func parentOf(t *testing.T, client *fakeClient, i int) *int {
	t.Helper()
	require.Greater(t, len(client.drafts), i)
	return client.drafts[i].ParentIssueID
}

func TestOrchestrator_ShorthandSiblings(t *testing.T) {
	client := newFakeClient(testMetadata())
	reporter := &recordingReporter{}

	result, err := NewOrchestrator(client, "PRJ", reporter, "").Run(context.Background(), preparedRows("", "*", "*"))
	require.NoError(t, err)

	require.Len(t, result.Issues, 3)
	first := result.Issues[0].Issue

	assert.Nil(t, parentOf(t, client, 0))
	require.NotNil(t, parentOf(t, client, 1))
	assert.Equal(t, first.ID, *parentOf(t, client, 1))
	// the anchor stays on the first issue, so the third row is a sibling
	require.NotNil(t, parentOf(t, client, 2))
	assert.Equal(t, first.ID, *parentOf(t, client, 2))

	assert.Equal(t, first.IssueKey, result.Issues[2].ParentKey)
	assert.Equal(t, "https://example.backlog.com/view/PRJ-1", result.Issues[0].URL)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, []string{"PRJ-1", "PRJ-2", "PRJ-3"}, reporter.created)
	assert.Equal(t, []string{"PRJ"}, client.finalized)
	assert.True(t, result.Finalized)
	assert.Equal(t, 3, result.Succeeded)
}

func TestOrchestrator_ShorthandAfterChildAnchor(t *testing.T) {
	client := newFakeClient(testMetadata())
	client.addIssue("EXT-1", 1, nil)
	reporter := &recordingReporter{}

	result, err := NewOrchestrator(client, "PRJ", reporter, "").Run(context.Background(), preparedRows("EXT-1", "*"))
	require.NoError(t, err)

	require.NotNil(t, parentOf(t, client, 0))
	assert.Equal(t, 1, *parentOf(t, client, 0))
	assert.Nil(t, parentOf(t, client, 1), "a child anchor cannot take children")

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, 3, result.Warnings[0].Row)
	assert.Contains(t, result.Warnings[0].Message, "cannot become a grandchild")
	assert.Equal(t, result.Warnings, reporter.warnings)
	assert.Equal(t, "EXT-1", result.Issues[0].ParentKey)
	assert.Empty(t, result.Issues[1].ParentKey)
}

func TestOrchestrator_ShorthandWithoutAnchor(t *testing.T) {
	client := newFakeClient(testMetadata())

	result, err := NewOrchestrator(client, "PRJ", nil, "").Run(context.Background(), preparedRows("*", "*"))
	require.NoError(t, err)

	assert.Nil(t, parentOf(t, client, 0))
	require.NotNil(t, parentOf(t, client, 1))
	assert.Equal(t, result.Issues[0].Issue.ID, *parentOf(t, client, 1))

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, 2, result.Warnings[0].Row)
}

func TestOrchestrator_CustomToken(t *testing.T) {
	client := newFakeClient(testMetadata())

	_, err := NewOrchestrator(client, "PRJ", nil, "^").Run(context.Background(), preparedRows("", "^"))
	require.NoError(t, err)
	require.NotNil(t, parentOf(t, client, 1))
	assert.Empty(t, client.lookups)
}

func TestOrchestrator_CreationFailureAborts(t *testing.T) {
	client := newFakeClient(testMetadata())
	prepared := preparedRows("", "*", "*", "")
	client.failOn = prepared[2].Draft.Summary

	result, err := NewOrchestrator(client, "PRJ", nil, "").Run(context.Background(), prepared)
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrCreation))
	assert.True(t, errors.Is(err, backlog.ErrAccess))
	assert.Contains(t, err.Error(), "row 4: failed to create issue")

	require.NotNil(t, result)
	assert.Len(t, client.drafts, 2, "no row after the failure is attempted")
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Skipped())
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 4, result.Errors[0].Row)
	assert.Empty(t, client.finalized)
	assert.False(t, result.Finalized)
}

func TestOrchestrator_ExplicitParentVanished(t *testing.T) {
	client := newFakeClient(testMetadata())

	_, err := NewOrchestrator(client, "PRJ", nil, "").Run(context.Background(), preparedRows("GONE-1"))
	require.Error(t, err)
	assert.True(t, IsInternal(err))
	assert.Empty(t, client.drafts)
}

func TestOrchestrator_DoesNotMutateDrafts(t *testing.T) {
	client := newFakeClient(testMetadata())
	prepared := preparedRows("", "*")

	_, err := NewOrchestrator(client, "PRJ", nil, "").Run(context.Background(), prepared)
	require.NoError(t, err)
	assert.Nil(t, prepared[1].Draft.ParentIssueID)
}
