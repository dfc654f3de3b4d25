package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/VitaminP8/discuss/internal/discussion"
	"github.com/VitaminP8/discuss/internal/model"
)

// postSummary - реакции поста глазами текущего пользователя
func (r *Resolver) postSummary(c *gin.Context, p *model.Post) discussion.ReactionSummary {
	actor := model.Anonymous
	if r.Deps.Identity != nil {
		actor = r.Deps.Identity.CurrentActor(c.Request.Context())
	}
	return discussion.NewReactionSet(p.Reactions, actor.ID, actor.Name).Summary()
}

// checkCommentPost: комментарий из пути должен принадлежать посту из пути.
// Отсутствующий комментарий не отклоняется здесь: координатор отличит повторное удаление.
func (r *Resolver) checkCommentPost(c *gin.Context) error {
	postID, commentID := c.Param("id"), c.Param("cid")
	cm, err := r.Deps.Comments.GetComment(c.Request.Context(), commentID)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	if err != nil {
		return model.Classify("lookup", err)
	}
	if cm.PostID != postID {
		return model.Classify("lookup", fmt.Errorf("comment %s on post %s: %w", commentID, postID, model.ErrNotFound))
	}
	return nil
}

// ListPosts: GET /posts
func (r *Resolver) ListPosts(c *gin.Context) {
	ctx := c.Request.Context()
	posts, err := r.Posts.Feed(ctx)
	if err != nil {
		r.fail(c, "ListPosts", err)
		return
	}
	canCreate, known := r.Posts.CanCreate(ctx)

	views := make([]*postView, 0, len(posts))
	for _, p := range posts {
		views = append(views, newPostView(p, r.postSummary(c, p)))
	}
	c.JSON(http.StatusOK, gin.H{
		"posts":     views,
		"canCreate": canCreate,
		"known":     known,
	})
}

// CreatePost: POST /posts
func (r *Resolver) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := bind(c, &req); err != nil {
		r.fail(c, "CreatePost", err)
		return
	}
	p, err := r.Posts.CreatePost(c.Request.Context(), req.Title, req.Content)
	if err != nil {
		r.fail(c, "CreatePost", err)
		return
	}
	c.JSON(http.StatusCreated, newPostView(p, r.postSummary(c, p)))
}

// PinPost: PUT /posts/:id/pin
func (r *Resolver) PinPost(c *gin.Context) {
	var req pinRequest
	if err := bind(c, &req); err != nil {
		r.fail(c, "PinPost", err)
		return
	}
	if err := r.Posts.SetPinned(c.Request.Context(), c.Param("id"), *req.Pinned); err != nil {
		r.fail(c, "PinPost", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "pinned": *req.Pinned})
}

// DeletePost: DELETE /posts/:id
func (r *Resolver) DeletePost(c *gin.Context) {
	if err := r.Posts.DeletePost(c.Request.Context(), c.Param("id")); err != nil {
		r.fail(c, "DeletePost", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// TogglePostReaction: POST /posts/:id/reactions
func (r *Resolver) TogglePostReaction(c *gin.Context) {
	var req reactionRequest
	if err := bind(c, &req); err != nil {
		r.fail(c, "TogglePostReaction", err)
		return
	}
	summary, err := r.Posts.ToggleReaction(c.Request.Context(), c.Param("id"), req.Type)
	if err != nil {
		r.fail(c, "TogglePostReaction", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetThread: GET /posts/:id/comments
func (r *Resolver) GetThread(c *gin.Context) {
	ctx := c.Request.Context()
	thread := r.openThread(c.Param("id"))
	defer thread.Close()

	if err := thread.Refresh(ctx); err != nil {
		r.fail(c, "GetThread", err)
		return
	}
	c.JSON(http.StatusOK, threadView{
		Post:     newPostView(thread.Post(), thread.PostReactions()),
		Role:     thread.Role(),
		Comments: newCommentViews(thread.Nodes()),
	})
}

// CreateComment: POST /posts/:id/comments
func (r *Resolver) CreateComment(c *gin.Context) {
	var req createCommentRequest
	if err := bind(c, &req); err != nil {
		r.fail(c, "CreateComment", err)
		return
	}
	created, err := r.Coordinator.SubmitComment(c.Request.Context(), c.Param("id"), req.Content, req.ParentID)
	if err != nil {
		r.fail(c, "CreateComment", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateComment: PATCH /posts/:id/comments/:cid
func (r *Resolver) UpdateComment(c *gin.Context) {
	var req updateCommentRequest
	if err := bind(c, &req); err != nil {
		r.fail(c, "UpdateComment", err)
		return
	}
	if err := r.checkCommentPost(c); err != nil {
		r.fail(c, "UpdateComment", err)
		return
	}
	updated, err := r.Coordinator.EditComment(c.Request.Context(), c.Param("cid"), req.Content)
	if err != nil {
		r.fail(c, "UpdateComment", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteComment: DELETE /posts/:id/comments/:cid
func (r *Resolver) DeleteComment(c *gin.Context) {
	if err := r.checkCommentPost(c); err != nil {
		r.fail(c, "DeleteComment", err)
		return
	}
	if err := r.Coordinator.DeleteComment(c.Request.Context(), c.Param("cid")); err != nil {
		r.fail(c, "DeleteComment", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleCommentReaction: POST /posts/:id/comments/:cid/reactions.
// Реакция ставится через Thread, чтобы ответ уже содержал оптимистичное состояние.
func (r *Resolver) ToggleCommentReaction(c *gin.Context) {
	var req reactionRequest
	if err := bind(c, &req); err != nil {
		r.fail(c, "ToggleCommentReaction", err)
		return
	}

	ctx := c.Request.Context()
	commentID := c.Param("cid")
	thread := r.openThread(c.Param("id"))
	defer thread.Close()

	if err := thread.Refresh(ctx); err != nil {
		r.fail(c, "ToggleCommentReaction", err)
		return
	}
	if findNode(thread.Nodes(), commentID) == nil {
		r.fail(c, "ToggleCommentReaction", model.Classify("react", model.ErrNotFound))
		return
	}

	target := model.TargetRef{Kind: model.TargetComment, ID: commentID}
	if err := thread.ToggleReaction(ctx, target, req.Type); err != nil {
		r.fail(c, "ToggleCommentReaction", err)
		return
	}
	node := findNode(thread.Nodes(), commentID)
	c.JSON(http.StatusOK, node.Reactions)
}
