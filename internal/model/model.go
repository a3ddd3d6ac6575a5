package model

import (
	"encoding/json"
	"fmt"
	"time"
)

type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Public    bool      `json:"public"`
	CreatedAt time.Time `json:"date"`
}

// URL is the canonical API path of the post.
func (p Post) URL() string {
	return fmt.Sprintf("/api/posts/%s", p.ID)
}

func (p Post) TimeISO() string {
	return formatTime(p.CreatedAt)
}

func (p Post) MarshalJSON() ([]byte, error) {
	type post Post
	return json.Marshal(struct {
		post
		URL     string `json:"url"`
		TimeISO string `json:"time_iso"`
	}{post(p), p.URL(), p.TimeISO()})
}

type Comment struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	Parent    string    `json:"parent"`
	CreatedAt time.Time `json:"date"`
}

// URL is the canonical API path of the comment, nested under its parent post.
func (c Comment) URL() string {
	return fmt.Sprintf("/api/posts/%s/comments/%s", c.Parent, c.ID)
}

func (c Comment) TimeISO() string {
	return formatTime(c.CreatedAt)
}

func (c Comment) MarshalJSON() ([]byte, error) {
	type comment Comment
	return json.Marshal(struct {
		comment
		URL     string `json:"url"`
		TimeISO string `json:"time_iso"`
	}{comment(c), c.URL(), c.TimeISO()})
}

type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// formatTime renders t in UTC as "2006-01-02 15:04", adding seconds and
// milliseconds only when they are non-zero.
func formatTime(t time.Time) string {
	t = t.UTC()
	ms := t.Nanosecond() / int(time.Millisecond)
	switch {
	case ms != 0:
		return t.Format("2006-01-02 15:04:05.000")
	case t.Second() != 0:
		return t.Format("2006-01-02 15:04:05")
	default:
		return t.Format("2006-01-02 15:04")
	}
}
