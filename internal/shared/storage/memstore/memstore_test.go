package memstore

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secbot-fulfillment/internal/shared/model"
	"secbot-fulfillment/internal/shared/storage"
)

func testStore() *Store {
	s := NewStore(
		[]*model.Concept{
			{ID: "firewall", Name: "Firewall (Tường lửa)", Aliases: []string{"tường lửa"}},
			{ID: "xss", Name: "Cross-Site Scripting"},
		},
		[]*model.Question{
			{ID: "q1", Type: model.QuestionMultipleChoice, Topic: "mang", SubTopic: "firewall", Difficulty: "easy"},
			{ID: "q2", Type: model.QuestionMultipleChoice, Topic: "web", SubTopic: "xss", Difficulty: "hard"},
			{ID: "q3", Type: model.QuestionTheory, Topic: "web", SubTopic: "xss", Difficulty: "easy"},
		},
	)
	s.SetRand(rand.New(rand.NewSource(42)))
	return s
}

func TestFindConcept(t *testing.T) {
	s := testStore()
	ctx := context.Background()

	tests := []struct {
		name   string
		term   string
		wantID string
	}{
		{"by id", "firewall", "firewall"},
		{"by id case insensitive", "FIREWALL", "firewall"},
		{"by alias", "tường lửa", "firewall"},
		{"by name substring", "scripting", "xss"},
		{"not found", "blockchain", ""},
		{"empty term", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FindConcept(ctx, tt.term)
			require.NoError(t, err)
			if tt.wantID == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestSampleQuestions(t *testing.T) {
	s := testStore()
	ctx := context.Background()

	tests := []struct {
		name    string
		filter  storage.QuestionFilter
		wantIDs map[string]bool
	}{
		{
			name:    "by type",
			filter:  storage.QuestionFilter{Type: model.QuestionTheory, Count: 10},
			wantIDs: map[string]bool{"q3": true},
		},
		{
			name:    "by topic and difficulty",
			filter:  storage.QuestionFilter{Topic: "web", Difficulty: "hard", Count: 10},
			wantIDs: map[string]bool{"q2": true},
		},
		{
			name:    "by sub_topic case insensitive",
			filter:  storage.QuestionFilter{SubTopic: "XSS", Count: 10},
			wantIDs: map[string]bool{"q2": true, "q3": true},
		},
		{
			name:    "no match",
			filter:  storage.QuestionFilter{Topic: "crypto", Count: 10},
			wantIDs: map[string]bool{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.SampleQuestions(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, got, len(tt.wantIDs))
			for _, q := range got {
				assert.True(t, tt.wantIDs[q.ID], "unexpected question %s", q.ID)
			}
		})
	}
}

func TestSampleQuestions_CountTruncates(t *testing.T) {
	s := testStore()
	got, err := s.SampleQuestions(context.Background(), storage.QuestionFilter{Count: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestGetQuestionsByIDs(t *testing.T) {
	s := testStore()
	got, err := s.GetQuestionsByIDs(context.Background(), []string{"q1", "q3", "missing"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
