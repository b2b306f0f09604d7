package submission_test

import (
	"context"
	"testing"
	"time"

	"terminal-terrace/edustream/internal/model/content"
	"terminal-terrace/edustream/internal/moderation"
	"terminal-terrace/edustream/internal/submission"
	"terminal-terrace/edustream/internal/testutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormRepository_Transition(t *testing.T) {
	db := testutils.SetupTestDB(t)
	repo := submission.NewGormRepository(db)
	ctx := context.Background()

	owner := uuid.New()
	reviewer := uuid.New()
	video := testutils.CreateTestVideo(db, owner)
	notes := "ok"

	err := repo.Transition(ctx, moderation.KindVideo, video.ID, content.StatusApproved, submission.ReviewRecord{
		ReviewerID: reviewer,
		Notes:      &notes,
		At:         time.Now(),
	})
	require.NoError(t, err)

	var stored content.Video
	require.NoError(t, db.First(&stored, "id = ?", video.ID).Error)
	assert.Equal(t, content.StatusApproved, stored.Status)
	require.NotNil(t, stored.ReviewedBy)
	assert.Equal(t, reviewer, *stored.ReviewedBy)
	require.NotNil(t, stored.ReviewNotes)
	assert.Equal(t, "ok", *stored.ReviewNotes)

	err = repo.Transition(ctx, moderation.KindVideo, video.ID, content.StatusRejected, submission.ReviewRecord{ReviewerID: reviewer, At: time.Now()})
	assert.ErrorIs(t, err, submission.ErrInvalidTransition)

	err = repo.Transition(ctx, moderation.KindVideo, uuid.New(), content.StatusRejected, submission.ReviewRecord{ReviewerID: reviewer, At: time.Now()})
	assert.ErrorIs(t, err, submission.ErrNotFound)

	err = repo.Transition(ctx, moderation.ContentKind("podcast"), video.ID, content.StatusRejected, submission.ReviewRecord{})
	assert.ErrorIs(t, err, submission.ErrInvalidInput)
}

func TestGormRepository_ListVideos(t *testing.T) {
	db := testutils.SetupTestDB(t)
	repo := submission.NewGormRepository(db)
	ctx := context.Background()

	owner := uuid.New()
	marker := "list-" + uuid.NewString()
	testutils.CreateTestVideo(db, owner, testutils.WithVideoTitle(marker), testutils.WithVideoStatus(content.StatusApproved))
	testutils.CreateTestVideo(db, owner, testutils.WithVideoTitle(marker))

	approved, err := repo.ListVideos(ctx, content.StatusApproved, 100)
	require.NoError(t, err)

	found := 0
	for _, v := range approved {
		assert.Equal(t, content.StatusApproved, v.Status)
		if v.Title == marker {
			found++
		}
	}
	assert.Equal(t, 1, found)
}

func TestGormRepository_CreateArticle(t *testing.T) {
	db := testutils.SetupTestDB(t)
	repo := submission.NewGormRepository(db)

	article := &content.Article{
		UserID:  uuid.New(),
		Title:   "Seasons",
		Content: "why the earth has seasons",
		Tags:    "science,earth",
		Status:  content.StatusPending,
	}
	require.NoError(t, repo.CreateArticle(context.Background(), article))
	assert.NotEqual(t, uuid.Nil, article.ID)

	pending, err := repo.ListArticles(context.Background(), content.StatusPending, 10)
	require.NoError(t, err)
	require.NotEmpty(t, pending)
	assert.Equal(t, article.ID, pending[0].ID)
}
