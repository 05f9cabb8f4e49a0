package mongostore

import (
	"context"
	"os"
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"

	"secbot-fulfillment/internal/shared/model"
	"secbot-fulfillment/internal/shared/storage"
)

// testStore 创建测试用 Store，使用独立数据库避免污染
func testStore(t *testing.T) *Store {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	s, err := NewStore(uri, "secbot_test")
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}

	ctx := context.Background()
	if err := s.db.Drop(ctx); err != nil {
		t.Fatalf("Failed to drop test database: %v", err)
	}
	if err := s.ensureIndexes(ctx); err != nil {
		t.Fatalf("Failed to create indexes: %v", err)
	}

	t.Cleanup(func() {
		s.db.Drop(context.Background())
		s.Close()
	})

	return s
}

func seedConcepts(t *testing.T, s *Store) {
	t.Helper()
	docs := []any{
		model.Concept{
			ID:         "firewall",
			Name:       "Firewall (Tường lửa)",
			Aliases:    []string{"tường lửa"},
			Definition: "Hệ thống kiểm soát lưu lượng mạng.",
		},
		model.Concept{
			ID:         "xss",
			Name:       "Cross-Site Scripting",
			Definition: "Tấn công chèn script.",
		},
	}
	if _, err := s.col(ColConcepts).InsertMany(context.Background(), docs); err != nil {
		t.Fatalf("Failed to seed concepts: %v", err)
	}
}

func seedQuestions(t *testing.T, s *Store) []string {
	t.Helper()
	docs := []any{
		model.Question{Content: "Q1", Type: model.QuestionMultipleChoice, Topic: "mang", SubTopic: "firewall", CorrectAnswer: "A"},
		model.Question{Content: "Q2", Type: model.QuestionMultipleChoice, Topic: "web", SubTopic: "xss", CorrectAnswer: "B"},
		model.Question{Content: "Q3", Type: model.QuestionTheory, Topic: "web", SubTopic: "xss", CorrectAnswer: "đáp án mẫu"},
	}
	res, err := s.col(ColQuestions).InsertMany(context.Background(), docs)
	if err != nil {
		t.Fatalf("Failed to seed questions: %v", err)
	}

	ids := make([]string, 0, len(res.InsertedIDs))
	for _, id := range res.InsertedIDs {
		ids = append(ids, id.(bson.ObjectID).Hex())
	}
	return ids
}

func TestFindConcept(t *testing.T) {
	s := testStore(t)
	seedConcepts(t, s)
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
		{"regex metacharacters treated literally", "a.b*c", ""},
		{"not found", "blockchain", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FindConcept(ctx, tt.term)
			if err != nil {
				t.Fatalf("FindConcept(%q): %v", tt.term, err)
			}
			if tt.wantID == "" {
				if got != nil {
					t.Errorf("FindConcept(%q) = %v, want nil", tt.term, got)
				}
				return
			}
			if got == nil || got.ID != tt.wantID {
				t.Errorf("FindConcept(%q) = %v, want ID %q", tt.term, got, tt.wantID)
			}
		})
	}
}

func TestSampleQuestions(t *testing.T) {
	s := testStore(t)
	seedQuestions(t, s)
	ctx := context.Background()

	got, err := s.SampleQuestions(ctx, storage.QuestionFilter{Type: model.QuestionMultipleChoice, Count: 10})
	if err != nil {
		t.Fatalf("SampleQuestions: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("SampleQuestions returned %d questions, want 2", len(got))
	}
	for _, q := range got {
		if q.ID == "" {
			t.Errorf("question %q has empty hex ID", q.Content)
		}
		if q.Type != model.QuestionMultipleChoice {
			t.Errorf("question %q has type %q", q.Content, q.Type)
		}
	}

	got, err = s.SampleQuestions(ctx, storage.QuestionFilter{SubTopic: "XSS", Count: 10})
	if err != nil {
		t.Fatalf("SampleQuestions by sub_topic: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("SampleQuestions by sub_topic returned %d, want 2", len(got))
	}

	got, err = s.SampleQuestions(ctx, storage.QuestionFilter{Topic: "crypto", Count: 10})
	if err != nil {
		t.Fatalf("SampleQuestions no match: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("SampleQuestions no match returned %d, want 0", len(got))
	}
}

func TestGetQuestionsByIDs(t *testing.T) {
	s := testStore(t)
	ids := seedQuestions(t, s)
	ctx := context.Background()

	// 坏 ID 跳过，不导致整批失败
	got, err := s.GetQuestionsByIDs(ctx, []string{ids[0], "not-a-hex-id", ids[2]})
	if err != nil {
		t.Fatalf("GetQuestionsByIDs: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("GetQuestionsByIDs returned %d, want 2", len(got))
	}

	got, err = s.GetQuestionsByIDs(ctx, []string{"bad", "worse"})
	if err != nil {
		t.Fatalf("GetQuestionsByIDs all invalid: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("GetQuestionsByIDs all invalid returned %d, want 0", len(got))
	}
}
