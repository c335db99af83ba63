package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/estimator/internal/domain/chat"
	"github.com/rpggio/estimator/internal/domain/project"
	"github.com/rpggio/estimator/internal/domain/takeoff"
	"github.com/rpggio/estimator/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestStateRepository_EmptyIsNotFound(t *testing.T) {
	repo := NewStateRepository(NewTestDB(t))
	_, err := repo.LoadProjects(context.Background())
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStateRepository_SaveLoad(t *testing.T) {
	ctx := context.Background()
	repo := NewStateRepository(NewTestDB(t))

	fileID := "f1"
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	projects := []project.Project{{
		ID:    "p1",
		Name:  "Elementary School",
		Files: []project.FileRecord{{ID: &fileID, Name: "specs.pdf", Type: project.FileSpec, Accepted: true}},
		Takeoff: []takeoff.Item{{
			ID: 1, Division: takeoff.DivisionLabel("09"), Description: "Paint walls",
			Quantity: 100, UnitCost: 2, CreatedAt: created, UserEdited: true, Source: takeoff.SourceManual,
		}},
		Discussion:  []chat.Message{{Sender: chat.SenderUser, Text: "hi", Timestamp: "10:00:00"}},
		Preferences: project.DefaultPreferences(),
	}}

	require.NoError(t, repo.SaveProjects(ctx, projects))
	projects[0].Name = "Renamed"
	require.NoError(t, repo.SaveProjects(ctx, projects))

	got, err := repo.LoadProjects(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Renamed", got[0].Name)
	require.Equal(t, "f1", got[0].Files[0].FileID())
	require.Equal(t, projects[0].Takeoff[0].Description, got[0].Takeoff[0].Description)
	require.True(t, got[0].Takeoff[0].UserEdited)
	require.True(t, created.Equal(got[0].Takeoff[0].CreatedAt))
	require.Equal(t, "hi", got[0].Discussion[0].Text)
}

func TestStateRepository_OldShapesStayLoadable(t *testing.T) {
	ctx := context.Background()
	db := NewTestDB(t)
	_, err := db.ExecContext(ctx, `INSERT INTO local_state (key, value) VALUES ('projects', ?)`,
		`[{"id":"p1","name":"Legacy","takeoff":[{"id":5,"description":"Slab"}]}]`)
	require.NoError(t, err)

	got, err := NewStateRepository(db).LoadProjects(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	p := got[0].WithDefaults()
	require.Equal(t, "Legacy", p.Name)
	require.NotNil(t, p.Notes)
	require.Equal(t, project.DefaultPreferences(), p.Preferences)
	require.Equal(t, int64(5), p.Takeoff[0].ID)
}
