package model

import "time"

type ReactionType string

const (
	ReactionLike  ReactionType = "like"
	ReactionLove  ReactionType = "love"
	ReactionLaugh ReactionType = "laugh"
)

// ReactionTypes - все допустимые типы в порядке отображения
var ReactionTypes = []ReactionType{ReactionLike, ReactionLove, ReactionLaugh}

func (t ReactionType) Valid() bool {
	switch t {
	case ReactionLike, ReactionLove, ReactionLaugh:
		return true
	}
	return false
}

type Reaction struct {
	ID       string       `json:"id"`
	Type     ReactionType `json:"type"`
	UserID   string       `json:"userId"`
	UserName string       `json:"userName"`
}

type Comment struct {
	ID           string     `json:"id"`
	PostID       string     `json:"postId"`
	ParentID     *string    `json:"parentId,omitempty"`
	Content      string     `json:"content"`
	AuthorID     string     `json:"authorId"`
	AuthorName   string     `json:"authorName"`
	AuthorAvatar string     `json:"authorAvatar,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	Reactions    []Reaction `json:"reactions"`
	// Replies заполняется только при построении дерева и никогда не сохраняется
	Replies []*Comment `json:"replies,omitempty"`
}

// Author нужен для проверки прав (Target)
func (c *Comment) Author() string {
	if c == nil {
		return ""
	}
	return c.AuthorID
}

type Post struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	AuthorID     string     `json:"authorId"`
	AuthorName   string     `json:"authorName"`
	AuthorRole   Role       `json:"authorRole"`
	CreatedAt    time.Time  `json:"createdAt"`
	Pinned       bool       `json:"pinned"`
	Reactions    []Reaction `json:"reactions"`
	CommentCount int        `json:"commentCount"`
}

func (p *Post) Author() string {
	if p == nil {
		return ""
	}
	return p.AuthorID
}

type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

// TargetRef - адрес объекта, на который ставится реакция
type TargetRef struct {
	Kind TargetKind
	ID   string
}

func (r TargetRef) String() string { return string(r.Kind) + ":" + r.ID }

type Actor struct {
	ID            string
	Name          string
	Authenticated bool
}

// Anonymous - неаутентифицированный пользователь
var Anonymous = Actor{}

type CreateCommentInput struct {
	PostID   string
	ParentID *string
	Content  string
	AuthorID string
}

type UpdateCommentInput struct {
	ID      string
	Content string
}

type CreatePostInput struct {
	Title    string
	Content  string
	AuthorID string
}

// Invalidation - сигнал о том, что коллекция комментариев поста устарела
type Invalidation struct {
	PostID string
}
