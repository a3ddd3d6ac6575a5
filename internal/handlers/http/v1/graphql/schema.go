package graphql

import (
	"time"

	"github.com/graphql-go/graphql"

	"github.com/Demonism0/blog-api/internal/model"
	"github.com/Demonism0/blog-api/internal/service"
)

var DateTime = graphql.NewScalar(
	graphql.ScalarConfig{
		Name:        "DateTime",
		Description: "DateTime scalar type",
		Serialize: func(value interface{}) interface{} {
			switch v := value.(type) {
			case time.Time:
				return v.UTC().Format(time.RFC3339Nano)
			case *time.Time:
				return v.UTC().Format(time.RFC3339Nano)
			default:
				return nil
			}
		},
	},
)

func (gh *gqlHandler) initSchema() error {
	postType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Post",
			Fields: graphql.Fields{
				"id":     &graphql.Field{Type: graphql.ID},
				"title":  &graphql.Field{Type: graphql.String},
				"body":   &graphql.Field{Type: graphql.String},
				"public": &graphql.Field{Type: graphql.Boolean},
				"date":   &graphql.Field{Type: DateTime},
				"url": &graphql.Field{Type: graphql.String, Resolve: resolvePost(func(p model.Post) any {
					return p.URL()
				})},
				"timeIso": &graphql.Field{Type: graphql.String, Resolve: resolvePost(func(p model.Post) any {
					return p.TimeISO()
				})},
			},
		},
	)

	commentType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Comment",
			Fields: graphql.Fields{
				"id":     &graphql.Field{Type: graphql.ID},
				"body":   &graphql.Field{Type: graphql.String},
				"author": &graphql.Field{Type: graphql.String},
				"parent": &graphql.Field{Type: graphql.ID},
				"date":   &graphql.Field{Type: DateTime},
				"url": &graphql.Field{Type: graphql.String, Resolve: resolveComment(func(c model.Comment) any {
					return c.URL()
				})},
				"timeIso": &graphql.Field{Type: graphql.String, Resolve: resolveComment(func(c model.Comment) any {
					return c.TimeISO()
				})},
			},
		},
	)

	threadType := graphql.NewObject(
		graphql.ObjectConfig{
			Name:        "Thread",
			Description: "A post with its comments, newest first.",
			Fields: graphql.Fields{
				"post": &graphql.Field{Type: postType, Resolve: resolveThread(func(t *service.Thread) any {
					return t.Post
				})},
				"comments": &graphql.Field{Type: graphql.NewList(commentType), Resolve: resolveThread(func(t *service.Thread) any {
					return t.Comments
				})},
			},
		},
	)

	postInput := graphql.NewInputObject(
		graphql.InputObjectConfig{
			Name: "PostInput",
			Fields: graphql.InputObjectConfigFieldMap{
				"title":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
				"body":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
				"public": &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
			},
		},
	)

	commentInput := graphql.NewInputObject(
		graphql.InputObjectConfig{
			Name: "CommentInput",
			Fields: graphql.InputObjectConfigFieldMap{
				"body": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
				"name": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			},
		},
	)

	queryType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"posts":    getPostsQuery(gh, postType),
				"post":     getPostQuery(gh, postType),
				"comments": getCommentsQuery(gh, commentType),
			},
		},
	)

	mutationType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Mutation",
			Fields: graphql.Fields{
				"login":         loginMutation(gh),
				"createPost":    createPostMutation(gh, postType, postInput),
				"updatePost":    updatePostMutation(gh, postType, postInput),
				"deletePost":    deletePostMutation(gh, postType),
				"createComment": createCommentMutation(gh, threadType, commentInput),
				"deleteComment": deleteCommentMutation(gh, commentType),
			},
		},
	)

	schemaConfig := graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	}

	schema, err := graphql.NewSchema(schemaConfig)
	if err != nil {
		return err
	}
	gh.schema = schema

	return nil
}

func resolvePost(fn func(model.Post) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		switch v := p.Source.(type) {
		case model.Post:
			return fn(v), nil
		case *model.Post:
			return fn(*v), nil
		}
		return nil, nil
	}
}

func resolveThread(fn func(*service.Thread) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if t, ok := p.Source.(*service.Thread); ok && t != nil {
			return fn(t), nil
		}
		return nil, nil
	}
}

func resolveComment(fn func(model.Comment) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		switch v := p.Source.(type) {
		case model.Comment:
			return fn(v), nil
		case *model.Comment:
			return fn(*v), nil
		}
		return nil, nil
	}
}
