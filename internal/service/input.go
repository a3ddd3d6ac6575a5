package service

import (
	"errors"
	"html"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Demonism0/blog-api/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type PostInput struct {
	Title string `json:"title" validate:"required,max=70"`
	Body  string `json:"body" validate:"required,max=280"`
	// Public accepts a JSON boolean or one of "true", "false", "1", "0".
	// Absent means public.
	Public any `json:"public" validate:"-"`
}

var postMessages = map[string]string{
	"title.required": "Title must not be empty",
	"title.max":      "Title must not contain more than 70 characters",
	"body.required":  "Body must not be empty",
	"body.max":       "Body must not contain more than 280 characters",
}

const publicMessage = "Post must either be public or private"

// post trims and validates the input and returns the escaped post fields.
func (in PostInput) post() (model.Post, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)

	msgs := check(in, postMessages)
	public, ok := parseVisibility(in.Public)
	if !ok {
		msgs = append(msgs, publicMessage)
	}
	if len(msgs) > 0 {
		return model.Post{}, &ValidationError{
			Fields: map[string]any{"title": in.Title, "body": in.Body, "public": in.Public},
			Errors: msgs,
		}
	}

	return model.Post{
		Title:  html.EscapeString(in.Title),
		Body:   html.EscapeString(in.Body),
		Public: public,
	}, nil
}

type CommentInput struct {
	Body string `json:"body" validate:"required,max=280"`
	Name string `json:"name" validate:"required,max=32"`
}

var commentMessages = map[string]string{
	"body.required": "Comment must not be empty",
	"body.max":      "Comment must not contain more than 280 characters",
	"name.required": "Name must not be empty",
	"name.max":      "Name must not contain more than 32 characters",
}

func (in CommentInput) comment() (model.Comment, error) {
	in.Body = strings.TrimSpace(in.Body)
	in.Name = strings.TrimSpace(in.Name)

	if msgs := check(in, commentMessages); len(msgs) > 0 {
		return model.Comment{}, &ValidationError{
			Fields: map[string]any{"body": in.Body, "name": in.Name},
			Errors: msgs,
		}
	}

	return model.Comment{
		Body:   html.EscapeString(in.Body),
		Author: html.EscapeString(in.Name),
	}, nil
}

// check runs the struct rules of in and translates each failure through
// messages, keyed by "<json field>.<rule>".
func check(in any, messages map[string]string) []string {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fe.Error()
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

func parseVisibility(v any) (bool, bool) {
	switch val := v.(type) {
	case nil:
		return true, true
	case bool:
		return val, true
	case float64:
		switch val {
		case 1:
			return true, true
		case 0:
			return false, true
		}
	case string:
		switch val {
		case "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
	}
	return false, false
}
