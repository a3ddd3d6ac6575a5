package service

import (
	"errors"
	"strings"
	"testing"
)

func TestPostInputMessages(t *testing.T) {
	cases := []struct {
		name string
		in   PostInput
		want []string
	}{
		{"empty", PostInput{Title: " ", Body: ""}, []string{
			"Title must not be empty", "Body must not be empty",
		}},
		{"too long", PostInput{Title: strings.Repeat("t", 71), Body: strings.Repeat("b", 281)}, []string{
			"Title must not contain more than 70 characters", "Body must not contain more than 280 characters",
		}},
		{"bad visibility", PostInput{Title: "t", Body: "b", Public: "yes"}, []string{
			"Post must either be public or private",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.in.post()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if strings.Join(verr.Errors, "|") != strings.Join(tc.want, "|") {
				t.Fatalf("messages = %q, want %q", verr.Errors, tc.want)
			}
		})
	}
}

func TestPostInputEchoesFields(t *testing.T) {
	_, err := PostInput{Title: "  kept  ", Body: "", Public: "0"}.post()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Fields["title"] != "kept" || verr.Fields["body"] != "" || verr.Fields["public"] != "0" {
		t.Fatalf("unexpected fields %v", verr.Fields)
	}
}

func TestPostInputLengthCountsCharacters(t *testing.T) {
	if _, err := (PostInput{Title: strings.Repeat("é", 70), Body: "b"}).post(); err != nil {
		t.Fatalf("70 characters should pass: %v", err)
	}
}

func TestParseVisibility(t *testing.T) {
	cases := []struct {
		in     any
		want   bool
		wantOK bool
	}{
		{nil, true, true},
		{true, true, true},
		{false, false, true},
		{"true", true, true},
		{"false", false, true},
		{"1", true, true},
		{"0", false, true},
		{float64(1), true, true},
		{float64(0), false, true},
		{float64(2), false, false},
		{"yes", false, false},
		{"", false, false},
		{[]any{}, false, false},
	}
	for _, tc := range cases {
		got, ok := parseVisibility(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Fatalf("parseVisibility(%#v) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestCommentInputMessages(t *testing.T) {
	_, err := CommentInput{Body: strings.Repeat("x", 281), Name: strings.Repeat("n", 33)}.comment()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := "Comment must not contain more than 280 characters|Name must not contain more than 32 characters"
	if got := strings.Join(verr.Errors, "|"); got != want {
		t.Fatalf("messages = %q", got)
	}

	comment, err := CommentInput{Body: " <i>hey</i> ", Name: " Tom & Jerry "}.comment()
	if err != nil {
		t.Fatalf("valid comment: %v", err)
	}
	if comment.Body != "&lt;i&gt;hey&lt;/i&gt;" || comment.Author != "Tom &amp; Jerry" {
		t.Fatalf("unexpected comment %+v", comment)
	}
}
