package service

import (
	"context"
	"testing"

	"timebank/internal/models"
	"timebank/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchScore(t *testing.T) {
	viewer := &models.User{City: "pune", Skills: []string{"Cooking", "guitar"}}
	tests := []struct {
		name string
		task models.Task
		want int
	}{
		{"same city only", models.Task{City: "pune", Title: "Paint a fence"}, 50},
		{"skill in text", models.Task{City: "goa", Title: "Guitar basics"}, 30},
		{"skill as category", models.Task{City: "goa", Title: "Dinner", Category: "Cooking"}, 30},
		{"city and two skills", models.Task{City: "pune", Title: "Cooking with guitar music"}, 110},
		{"nothing", models.Task{City: "goa", Title: "Tax filing"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchScore(&tt.task, viewer))
		})
	}
}

func TestExplore_RanksAndExcludesOwnTasks(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	viewer := testutil.CreateUser(t, f.db, "Viewer", testutil.WithCity("pune"), testutil.WithSkills("gardening"))
	local := testutil.CreateUser(t, f.db, "Local", testutil.WithCity("pune"))
	remote := testutil.CreateUser(t, f.db, "Remote", testutil.WithCity("goa"))

	_, err := f.svc.CreateTask(ctx, remote.ID, CreateTaskInput{Title: "Gardening help", Category: "Gardening"})
	require.NoError(t, err)
	plain, err := f.svc.CreateTask(ctx, local.ID, CreateTaskInput{Title: "Move boxes", Category: "Home Help"})
	require.NoError(t, err)
	best, err := f.svc.CreateTask(ctx, local.ID, CreateTaskInput{Title: "Weekend gardening", Category: "Gardening"})
	require.NoError(t, err)
	_, err = f.svc.CreateTask(ctx, viewer.ID, CreateTaskInput{Title: "My own gardening", Category: "Gardening"})
	require.NoError(t, err)

	out, err := f.svc.Explore(ctx, viewer.ID, ExploreFilter{})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, best.ID, out[0].ID)
	assert.Equal(t, 80, out[0].MatchScore)
	assert.Equal(t, plain.ID, out[1].ID)
	assert.Equal(t, 50, out[1].MatchScore)
	assert.Equal(t, 30, out[2].MatchScore)

	filtered, err := f.svc.Explore(ctx, viewer.ID, ExploreFilter{Category: "Home Help"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, plain.ID, filtered[0].ID)
}

func TestDashboard(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	me := testutil.CreateUser(t, f.db, "Me", testutil.WithSkills("tutoring"))
	other := testutil.CreateUser(t, f.db, "Other")
	faraway := testutil.CreateUser(t, f.db, "Far", testutil.WithCity("chennai"))

	for i := 0; i < 4; i++ {
		_, err := f.svc.CreateTask(ctx, other.ID, CreateTaskInput{Title: "Maths tutoring", Category: "Teaching/Tutoring"})
		require.NoError(t, err)
	}
	_, err := f.svc.CreateTask(ctx, faraway.ID, CreateTaskInput{Title: "Tutoring in chennai", Category: "Teaching/Tutoring"})
	require.NoError(t, err)
	mine := f.createTask(t, me, models.TaskKindOffer, 30)

	d, err := f.svc.Dashboard(ctx, me.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, d.User.TimeCredits)
	require.Len(t, d.ActiveTasks, 1)
	assert.Equal(t, mine.ID, d.ActiveTasks[0].ID)
	require.Len(t, d.Suggestions, 3)
	for _, s := range d.Suggestions {
		assert.Equal(t, "pune", s.City)
		assert.Equal(t, other.ID, s.CreatedByID)
	}
	assert.Zero(t, d.TotalUnread)
}
