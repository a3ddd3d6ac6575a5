// Package policy decides what a caller may see and change based on the
// outcome of credential verification.
//
// Only list reads are filtered. Looking a post up by id is open to every
// caller whatever its visibility.
package policy

import (
	"github.com/Demonism0/blog-api/internal/auth"
	"github.com/Demonism0/blog-api/internal/model"
	"github.com/Demonism0/blog-api/internal/repository"
)

const FilteredNote = "Showing public posts only. Private posts require a valid credential."

type Listing struct {
	Posts []model.Post
	// Note is set when private posts were withheld.
	Note string
}

// FilterPosts keeps posts in their original order. Authenticated callers get
// the input unchanged; everyone else gets only public posts.
func FilterPosts(posts []model.Post, who auth.Result) Listing {
	if who.Authenticated() {
		return Listing{Posts: posts}
	}

	public := make([]model.Post, 0, len(posts))
	for _, post := range posts {
		if post.Public {
			public = append(public, post)
		}
	}
	return Listing{Posts: public, Note: FilteredNote}
}

// PostFilter is the storage predicate matching FilterPosts.
func PostFilter(who auth.Result) repository.PostFilter {
	return repository.PostFilter{PublicOnly: !who.Authenticated()}
}

// CanMutate reports whether who may create, edit or delete posts and delete
// comments. Creating a comment needs no permission.
func CanMutate(who auth.Result) bool {
	return who.Authenticated()
}
