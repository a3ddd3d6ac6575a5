package graphql

import (
	"errors"
	"strings"

	"github.com/graphql-go/graphql"

	"github.com/Demonism0/blog-api/internal/auth"
	"github.com/Demonism0/blog-api/internal/service"
)

func getPostsQuery(gh *gqlHandler, postType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type:        graphql.NewList(postType),
		Description: "Newest first. Private posts are only listed for an authenticated caller.",
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			listing, err := gh.svc.ListPosts(p.Context, auth.FromContext(p.Context))
			if err != nil {
				return nil, gh.clientError(err)
			}
			return listing.Posts, nil
		},
	}
}

func getPostQuery(gh *gqlHandler, postType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: postType,
		Args: graphql.FieldConfigArgument{
			"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			thread, err := gh.svc.GetPost(p.Context, p.Args["id"].(string))
			if err != nil {
				return nil, gh.clientError(err)
			}
			return thread.Post, nil
		},
	}
}

func getCommentsQuery(gh *gqlHandler, commentType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewList(commentType),
		Args: graphql.FieldConfigArgument{
			"postId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			thread, err := gh.svc.GetPost(p.Context, p.Args["postId"].(string))
			if err != nil {
				return nil, gh.clientError(err)
			}
			return thread.Comments, nil
		},
	}
}

func loginMutation(gh *gqlHandler) *graphql.Field {
	return &graphql.Field{
		Type: graphql.String,
		Args: graphql.FieldConfigArgument{
			"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			token, err := gh.svc.Login(p.Context, p.Args["username"].(string), p.Args["password"].(string))
			if err != nil {
				return nil, gh.clientError(err)
			}
			return token, nil
		},
	}
}

func createPostMutation(gh *gqlHandler, postType *graphql.Object, input *graphql.InputObject) *graphql.Field {
	return &graphql.Field{
		Type: postType,
		Args: graphql.FieldConfigArgument{
			"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(input)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			post, err := gh.svc.CreatePost(p.Context, auth.FromContext(p.Context), postInput(p.Args["input"]))
			if err != nil {
				return nil, gh.clientError(err)
			}
			return post, nil
		},
	}
}

func updatePostMutation(gh *gqlHandler, postType *graphql.Object, input *graphql.InputObject) *graphql.Field {
	return &graphql.Field{
		Type: postType,
		Args: graphql.FieldConfigArgument{
			"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(input)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			thread, err := gh.svc.UpdatePost(p.Context, auth.FromContext(p.Context),
				p.Args["id"].(string), postInput(p.Args["input"]))
			if err != nil {
				return nil, gh.clientError(err)
			}
			return thread.Post, nil
		},
	}
}

func deletePostMutation(gh *gqlHandler, postType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: postType,
		Args: graphql.FieldConfigArgument{
			"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			post, err := gh.svc.DeletePost(p.Context, auth.FromContext(p.Context), p.Args["id"].(string))
			if err != nil {
				return nil, gh.clientError(err)
			}
			return post, nil
		},
	}
}

func createCommentMutation(gh *gqlHandler, threadType *graphql.Object, input *graphql.InputObject) *graphql.Field {
	return &graphql.Field{
		Type: threadType,
		Args: graphql.FieldConfigArgument{
			"postId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			"input":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(input)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			in := p.Args["input"].(map[string]interface{})
			thread, err := gh.svc.CreateComment(p.Context, p.Args["postId"].(string), service.CommentInput{
				Body: in["body"].(string),
				Name: in["name"].(string),
			})
			if err != nil {
				return nil, gh.clientError(err)
			}
			return thread, nil
		},
	}
}

func deleteCommentMutation(gh *gqlHandler, commentType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: commentType,
		Args: graphql.FieldConfigArgument{
			"postId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			"id":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			comment, err := gh.svc.DeleteComment(p.Context, auth.FromContext(p.Context),
				p.Args["postId"].(string), p.Args["id"].(string))
			if err != nil {
				return nil, gh.clientError(err)
			}
			return comment, nil
		},
	}
}

func postInput(arg interface{}) service.PostInput {
	in := arg.(map[string]interface{})
	return service.PostInput{
		Title:  in["title"].(string),
		Body:   in["body"].(string),
		Public: in["public"],
	}
}

// clientError hides storage details from the caller.
func (gh *gqlHandler) clientError(err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return errors.New(strings.Join(verr.Errors, "; "))
	case errors.Is(err, service.ErrForbidden):
		return errors.New("Forbidden")
	case errors.Is(err, service.ErrInconsistent):
		gh.logger.Error("inconsistent state", "error", err)
		return errors.New("Inconsistent state")
	case errors.Is(err, service.ErrStorageUnavailable):
		gh.logger.Error("storage unavailable", "error", err)
		return errors.New("Storage unavailable")
	case errors.Is(err, service.ErrNotFound):
		return errors.New("Not found")
	default:
		gh.logger.Error("graphql resolver failed", "error", err)
		return errors.New("Internal server error")
	}
}
