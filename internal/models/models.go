package models

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	PassHash string `json:"-"`
	Role     Role   `json:"role"`
}

type RefreshToken struct {
	Token     string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

type Test struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	// Time is the time allotted per question, in seconds. Listing endpoints
	// report the total duration instead (per-question time multiplied by the
	// question count).
	Time          int64 `json:"time"`
	QuestionCount int   `json:"-"`
}

type Question struct {
	ID            int64  `json:"id"`
	TestID        int64  `json:"testId"`
	Text          string `json:"questionText"`
	OptionA       string `json:"optionA"`
	OptionB       string `json:"optionB"`
	OptionC       string `json:"optionC"`
	OptionD       string `json:"optionD"`
	CorrectOption string `json:"-"`
}

type TestResult struct {
	ID             int64   `json:"id"`
	TestID         int64   `json:"-"`
	UserID         int64   `json:"-"`
	TotalQuestions int     `json:"totalQuestions"`
	CorrectAnswers int     `json:"correctAnswers"`
	Percentage     float64 `json:"percentage"`
	TestTitle      string  `json:"testName"`
	UserName       string  `json:"userName"`
}

// Message is the payload published to the broker when a user signs up.
type Message struct {
	Email   string `json:"to"`
	Name    string `json:"name"`
	Purpose string `json:"purpose"`
}
