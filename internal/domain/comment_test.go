package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCommentTree(t *testing.T) {
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	flat := []*Comment{
		{ID: "c1", EventID: "e1", Text: "first", CreatedAt: base},
		{ID: "c2", EventID: "e1", Text: "second", CreatedAt: base.Add(time.Minute)},
		{ID: "r1", EventID: "e1", ParentID: "c1", Text: "reply to first", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "r2", EventID: "e1", ParentID: "c1", Text: "another reply", CreatedAt: base.Add(3 * time.Minute)},
		{ID: "r3", EventID: "e1", ParentID: "c2", Text: "reply to second", CreatedAt: base.Add(4 * time.Minute)},
	}

	tree := BuildCommentTree(flat)

	require.Len(t, tree, 2)
	assert.Equal(t, "c1", tree[0].ID)
	assert.Equal(t, "c2", tree[1].ID)

	require.Len(t, tree[0].Replies, 2)
	assert.Equal(t, "r1", tree[0].Replies[0].ID)
	assert.Equal(t, "r2", tree[0].Replies[1].ID)
	require.Len(t, tree[1].Replies, 1)
	assert.Equal(t, "r3", tree[1].Replies[0].ID)
}

func TestBuildCommentTree_OrphanPromoted(t *testing.T) {
	flat := []*Comment{
		{ID: "c1", EventID: "e1", Text: "top"},
		{ID: "r1", EventID: "e1", ParentID: "deleted", Text: "parent gone"},
	}

	tree := BuildCommentTree(flat)

	require.Len(t, tree, 2)
	assert.Equal(t, "r1", tree[1].ID)
	assert.Empty(t, tree[1].Replies)
}

func TestBuildCommentTree_Empty(t *testing.T) {
	assert.Empty(t, BuildCommentTree(nil))
	assert.Empty(t, BuildCommentTree([]*Comment{}))
}

func TestBuildCommentTree_InputNotModified(t *testing.T) {
	flat := []*Comment{
		{ID: "c1", EventID: "e1", Text: "top"},
		{ID: "r1", EventID: "e1", ParentID: "c1", Text: "reply"},
	}

	tree := BuildCommentTree(flat)

	require.Len(t, tree, 1)
	require.Len(t, tree[0].Replies, 1)
	assert.Nil(t, flat[0].Replies)
	assert.NotNil(t, tree[0].Replies)

	// Returned nodes are copies of the input rows.
	tree[0].Text = "edited"
	assert.Equal(t, "top", flat[0].Text)
}
