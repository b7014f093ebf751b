package sqlite

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/maskfield/internal/submission"
)

func newTestRepo(t *testing.T) submission.Repository {
	t.Helper()
	db, err := NewMemoryDB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db.SubmissionRepository()
}

func TestSubmissionRepository_SaveAndFind(t *testing.T) {
	repo := newTestRepo(t)

	s := submission.New([]submission.Value{
		{Name: "phone", Value: "+7 (904)-148-76-23", Complete: true},
		{Name: "birthday", Value: "", Complete: false},
	})
	require.NoError(t, repo.Save(s))
	require.NotZero(t, s.ID())

	got, err := repo.FindByGUID(s.GUID())
	require.NoError(t, err)
	require.Equal(t, s.ID(), got.ID())
	require.Equal(t, s.GUID(), got.GUID())
	require.Equal(t, s.Values(), got.Values())
	require.False(t, got.Complete())
	require.Equal(t, s.CreatedAt().Unix(), got.CreatedAt().Unix())
}

func TestSubmissionRepository_NoValues(t *testing.T) {
	repo := newTestRepo(t)

	s := submission.New(nil)
	require.NoError(t, repo.Save(s))

	got, err := repo.FindByGUID(s.GUID())
	require.NoError(t, err)
	require.Empty(t, got.Values())
	require.True(t, got.Complete())
}

func TestSubmissionRepository_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.FindByGUID("missing")
	var nf *submission.NotFoundError
	require.True(t, errors.As(err, &nf))
	require.Equal(t, "missing", nf.GUID)
}

func TestSubmissionRepository_DuplicateGUID(t *testing.T) {
	repo := newTestRepo(t)

	at := time.Now()
	require.NoError(t, repo.Save(submission.Reconstitute(0, "same", nil, at)))
	require.Error(t, repo.Save(submission.Reconstitute(0, "same", nil, at)))
}

func TestSubmissionRepository_List(t *testing.T) {
	repo := newTestRepo(t)

	base := time.Unix(1700000000, 0)
	for i, zip := range []string{"02139", "10001", "94105"} {
		s := submission.Reconstitute(0, zip, []submission.Value{{Name: "zip", Value: zip, Complete: true}}, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Save(s))
	}

	all, err := repo.List(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "94105", all[0].GUID(), "newest first")
	require.Equal(t, "02139", all[2].GUID())
	require.Equal(t, "10001", all[1].Values()[0].Value)

	limited, err := repo.List(2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	require.Equal(t, "10001", limited[1].GUID())

	require.NoError(t, repo.Close())
}

func TestSubmissionRepository_ListEmpty(t *testing.T) {
	repo := newTestRepo(t)

	all, err := repo.List(10)
	require.NoError(t, err)
	require.Empty(t, all)
}
