package sqlite

import (
	"time"

	"github.com/zjrosen/maskfield/internal/submission"
)

// SubmissionModel is a row of the submissions table.
type SubmissionModel struct {
	ID        int64
	GUID      string
	Complete  bool
	CreatedAt int64 // Unix timestamp
}

// ValueModel is a row of the submission_values table.
type ValueModel struct {
	SubmissionID int64
	Position     int
	Name         string
	Value        string
	Complete     bool
}

func toSubmissionModel(s *submission.Submission) *SubmissionModel {
	return &SubmissionModel{
		ID:        s.ID(),
		GUID:      s.GUID(),
		Complete:  s.Complete(),
		CreatedAt: s.CreatedAt().Unix(),
	}
}

func toValueModels(s *submission.Submission) []ValueModel {
	values := s.Values()
	models := make([]ValueModel, len(values))
	for i, v := range values {
		models[i] = ValueModel{
			SubmissionID: s.ID(),
			Position:     i,
			Name:         v.Name,
			Value:        v.Value,
			Complete:     v.Complete,
		}
	}
	return models
}

func (m *SubmissionModel) toDomain(values []ValueModel) *submission.Submission {
	out := make([]submission.Value, len(values))
	for i, v := range values {
		out[i] = submission.Value{Name: v.Name, Value: v.Value, Complete: v.Complete}
	}
	return submission.Reconstitute(m.ID, m.GUID, out, time.Unix(m.CreatedAt, 0))
}
