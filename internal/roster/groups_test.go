package roster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddGroup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.True(t, f.svc.AddGroup(ctx, "  Group C "))
	assert.Equal(t, []string{"Group A", "Group B", "Group C"}, f.svc.GroupNames(ctx))
	assert.Equal(t, notification{LevelSuccess, `group "Group C" added`}, f.notes.last())

	g, ok := f.svc.Groups(ctx).Get("Group C")
	require.True(t, ok)
	assert.Empty(t, g.Members)
}

func TestAddGroup_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.False(t, f.svc.AddGroup(ctx, ""))
	assert.Equal(t, LevelError, f.notes.last().Level)

	assert.False(t, f.svc.AddGroup(ctx, "Group A"))
	assert.Contains(t, f.notes.last().Msg, "already exists")
	assert.Len(t, f.svc.GroupNames(ctx), 2)
}

func TestRemoveGroup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.True(t, f.svc.AddGroup(ctx, "Empty"))

	require.True(t, f.svc.RemoveGroup(ctx, "Empty"))
	assert.Equal(t, []string{"Group A", "Group B"}, f.svc.GroupNames(ctx))
}

func TestRemoveGroup_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.False(t, f.svc.RemoveGroup(ctx, "Missing"))
	assert.Contains(t, f.notes.last().Msg, "not found")

	assert.False(t, f.svc.RemoveGroup(ctx, "Group A"))
	assert.Contains(t, f.notes.last().Msg, "still has 3 students")
	assert.True(t, f.data(t).Groups.Has("Group A"))
}
