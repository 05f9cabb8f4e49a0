package model

// QuestionType 题目类型
type QuestionType string

const (
	// QuestionMultipleChoice 选择题，答案是选项字母
	QuestionMultipleChoice QuestionType = "multiple_choice"

	// QuestionTheory 理论题，答案是模型答案文本
	QuestionTheory QuestionType = "theory"
)

// Question 题库题目
//
// ID 对外是 hex 字符串；存储驱动负责与其原生 _id 类型互转，
// 业务层不接触驱动类型。
type Question struct {
	ID            string       `bson:"-" json:"id"`
	Content       string       `bson:"content" json:"content"`
	Type          QuestionType `bson:"type" json:"type"`
	Options       []string     `bson:"options,omitempty" json:"options,omitempty"`
	CorrectAnswer string       `bson:"correct_answer" json:"correct_answer"`
	Explanation   string       `bson:"explanation,omitempty" json:"explanation,omitempty"`
	Topic         string       `bson:"topic,omitempty" json:"topic,omitempty"`
	SubTopic      string       `bson:"sub_topic,omitempty" json:"sub_topic,omitempty"`
	Difficulty    string       `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
}
