package policy

import (
	"testing"

	"github.com/Demonism0/blog-api/internal/auth"
	"github.com/Demonism0/blog-api/internal/model"
)

func posts() []model.Post {
	return []model.Post{
		{ID: "c", Title: "third", Public: true},
		{ID: "b", Title: "second", Public: false},
		{ID: "a", Title: "first", Public: true},
	}
}

func TestFilterPostsUnauthenticated(t *testing.T) {
	for _, status := range []auth.Status{auth.Unauthenticated, auth.Invalid} {
		listing := FilterPosts(posts(), auth.Result{Status: status})

		if len(listing.Posts) != 2 {
			t.Fatalf("%v: expected 2 posts, got %d", status, len(listing.Posts))
		}
		if listing.Posts[0].ID != "c" || listing.Posts[1].ID != "a" {
			t.Fatalf("%v: order not preserved: %+v", status, listing.Posts)
		}
		for _, p := range listing.Posts {
			if !p.Public {
				t.Fatalf("%v: private post %s leaked", status, p.ID)
			}
		}
		if listing.Note != FilteredNote {
			t.Fatalf("%v: expected note, got %q", status, listing.Note)
		}
	}
}

func TestFilterPostsAuthenticated(t *testing.T) {
	listing := FilterPosts(posts(), auth.Result{Status: auth.Authenticated})

	if len(listing.Posts) != 3 {
		t.Fatalf("expected all 3 posts, got %d", len(listing.Posts))
	}
	if listing.Note != "" {
		t.Fatalf("expected no note, got %q", listing.Note)
	}
}

func TestPostFilterMatchesFilterPosts(t *testing.T) {
	for _, status := range []auth.Status{auth.Unauthenticated, auth.Authenticated, auth.Invalid} {
		who := auth.Result{Status: status}
		filter := PostFilter(who)

		want := FilterPosts(posts(), who).Posts
		var got []model.Post
		for _, p := range posts() {
			if filter.Match(p) {
				got = append(got, p)
			}
		}
		if len(got) != len(want) {
			t.Fatalf("%v: filter kept %d posts, policy kept %d", status, len(got), len(want))
		}
	}
}

func TestCanMutate(t *testing.T) {
	cases := map[auth.Status]bool{
		auth.Unauthenticated: false,
		auth.Invalid:         false,
		auth.Authenticated:   true,
	}
	for status, want := range cases {
		if got := CanMutate(auth.Result{Status: status}); got != want {
			t.Fatalf("%v: expected %v, got %v", status, want, got)
		}
	}
}
