package subscription

import "github.com/VitaminP8/discuss/internal/model"

type Manager interface {
	Subscribe(postID string) (<-chan model.Invalidation, func())
	Publish(postID string, ev model.Invalidation)
	Invalidate(postID string)
}
