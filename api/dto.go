package api

import (
	"html/template"
	"time"

	"github.com/VitaminP8/discuss/internal/discussion"
	"github.com/VitaminP8/discuss/internal/model"
	"github.com/VitaminP8/discuss/internal/render"
)

type createPostRequest struct {
	Title   string `json:"title" validate:"required,max=300"`
	Content string `json:"content" validate:"required,max=20000"`
}

type pinRequest struct {
	Pinned *bool `json:"pinned" validate:"required"`
}

type createCommentRequest struct {
	Content  string  `json:"content" validate:"required,max=20000"`
	ParentID *string `json:"parentId" validate:"omitempty,max=64"`
}

type updateCommentRequest struct {
	Content string `json:"content" validate:"required,max=20000"`
}

type reactionRequest struct {
	Type model.ReactionType `json:"type" validate:"required,oneof=like love laugh"`
}

// ErrorResponse - тело ответа с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

type postView struct {
	*model.Post
	ContentHTML template.HTML              `json:"contentHtml"`
	Summary     discussion.ReactionSummary `json:"reactionSummary"`
}

type permissionsView struct {
	discussion.Permissions
	ShowMenu bool `json:"showMenu"`
}

type commentView struct {
	ID           string                     `json:"id"`
	ParentID     *string                    `json:"parentId,omitempty"`
	Content      string                     `json:"content"`
	ContentHTML  template.HTML              `json:"contentHtml"`
	AuthorID     string                     `json:"authorId"`
	AuthorName   string                     `json:"authorName"`
	AuthorAvatar string                     `json:"authorAvatar,omitempty"`
	CreatedAt    time.Time                  `json:"createdAt"`
	Depth        int                        `json:"depth"`
	Reactions    discussion.ReactionSummary `json:"reactions"`
	Permissions  permissionsView            `json:"permissions"`
	CanReply     bool                       `json:"canReply"`
	Replies      []*commentView             `json:"replies"`
}

type threadView struct {
	Post     *postView      `json:"post,omitempty"`
	Role     model.Role     `json:"role"`
	Comments []*commentView `json:"comments"`
}

func newPostView(p *model.Post, summary discussion.ReactionSummary) *postView {
	if p == nil {
		return nil
	}
	return &postView{Post: p, ContentHTML: render.Markdown(p.Content), Summary: summary}
}

func newCommentViews(nodes []*discussion.Node) []*commentView {
	out := make([]*commentView, 0, len(nodes))
	for _, n := range nodes {
		c := n.Comment
		out = append(out, &commentView{
			ID:           c.ID,
			ParentID:     c.ParentID,
			Content:      c.Content,
			ContentHTML:  render.Markdown(c.Content),
			AuthorID:     c.AuthorID,
			AuthorName:   c.AuthorName,
			AuthorAvatar: c.AuthorAvatar,
			CreatedAt:    c.CreatedAt,
			Depth:        n.Depth,
			Reactions:    n.Reactions,
			Permissions:  permissionsView{Permissions: n.Permissions, ShowMenu: n.Permissions.ShowMenu()},
			CanReply:     n.CanReply,
			Replies:      newCommentViews(n.Replies),
		})
	}
	return out
}

// findNode ищет узел по ID комментария
func findNode(nodes []*discussion.Node, id string) *discussion.Node {
	stack := append([]*discussion.Node(nil), nodes...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Comment.ID == id {
			return n
		}
		stack = append(stack, n.Replies...)
	}
	return nil
}
