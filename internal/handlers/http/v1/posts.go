package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Demonism0/blog-api/internal/model"
	"github.com/Demonism0/blog-api/internal/service"
)

type listResponse struct {
	Posts   []model.Post `json:"postList"`
	Message string       `json:"message,omitempty"`
}

type postResponse struct {
	Post *model.Post `json:"post"`
}

type commentResponse struct {
	Comment *model.Comment `json:"comment"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (h *handler) listPosts(c *gin.Context) {
	listing, err := h.svc.ListPosts(c.Request.Context(), caller(c))
	if err != nil {
		h.fail(c, err, postNotFound)
		return
	}
	c.JSON(http.StatusOK, listResponse{Posts: listing.Posts, Message: listing.Note})
}

func (h *handler) getPost(c *gin.Context) {
	thread, err := h.svc.GetPost(c.Request.Context(), c.Param("postId"))
	if err != nil {
		h.fail(c, err, postNotFound)
		return
	}
	c.JSON(http.StatusOK, thread)
}

func (h *handler) createComment(c *gin.Context) {
	var in service.CommentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c)
		return
	}

	thread, err := h.svc.CreateComment(c.Request.Context(), c.Param("postId"), in)
	if err != nil {
		h.fail(c, err, postNotFound)
		return
	}
	c.JSON(http.StatusOK, thread)
}

func (h *handler) login(c *gin.Context) {
	var in loginRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c)
		return
	}

	token, err := h.svc.Login(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		h.fail(c, err, loginNotFound)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{Token: token})
}

// Gated handlers check the caller before the body is parsed so an
// unauthenticated request gets 403 even with a malformed body.

func (h *handler) createPost(c *gin.Context) {
	who := caller(c)
	if !who.Authenticated() {
		h.fail(c, service.ErrForbidden, postNotFound)
		return
	}

	var in service.PostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c)
		return
	}

	post, err := h.svc.CreatePost(c.Request.Context(), who, in)
	if err != nil {
		h.fail(c, err, postNotFound)
		return
	}
	c.JSON(http.StatusOK, postResponse{Post: post})
}

func (h *handler) updatePost(c *gin.Context) {
	who := caller(c)
	if !who.Authenticated() {
		h.fail(c, service.ErrForbidden, postNotFound)
		return
	}

	var in service.PostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c)
		return
	}

	thread, err := h.svc.UpdatePost(c.Request.Context(), who, c.Param("postId"), in)
	if err != nil {
		h.fail(c, err, postNotFound)
		return
	}
	c.JSON(http.StatusOK, thread)
}

func (h *handler) deletePost(c *gin.Context) {
	post, err := h.svc.DeletePost(c.Request.Context(), caller(c), c.Param("postId"))
	if err != nil {
		h.fail(c, err, bareNotFound("Post not found"))
		return
	}
	c.JSON(http.StatusOK, postResponse{Post: post})
}

func (h *handler) deleteComment(c *gin.Context) {
	comment, err := h.svc.DeleteComment(c.Request.Context(), caller(c), c.Param("postId"), c.Param("commentId"))
	if err != nil {
		h.fail(c, err, bareNotFound("Comment not found"))
		return
	}
	c.JSON(http.StatusOK, commentResponse{Comment: comment})
}
