package models

import "time"

type Question struct {
	ID          string   `bson:"_id,omitempty" json:"id"`
	Prompt      string   `bson:"prompt" json:"question"`
	Options     []string `bson:"options" json:"options"`
	AnswerIndex int      `bson:"answer_index" json:"answer_index"`
	Explanation string   `bson:"explanation" json:"explanation"`
	Order       int      `bson:"order" json:"order"`
}

type Quiz struct {
	ID        string     `bson:"_id,omitempty" json:"id"`
	Title     string     `bson:"title" json:"title"`
	Topic     string     `bson:"topic" json:"topic"`
	Level     string     `bson:"level" json:"level"`
	Questions []Question `bson:"questions" json:"questions"`
	Status    string     `bson:"status" json:"status"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// ResolveTopic returns the explicit topic when given, otherwise the quiz's
// own topic, falling back to "General".
func (q *Quiz) ResolveTopic(topic string) string {
	if topic != "" {
		return topic
	}
	if q.Topic != "" {
		return q.Topic
	}
	return "General"
}
