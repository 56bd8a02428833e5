// Package catalog holds the static point table mapping engagement actions
// to point values. Pure lookup, no state.
package catalog

import (
	"fmt"

	"github.com/pantheon-social/pantheon/internal/database/types"
	"github.com/pantheon-social/pantheon/internal/database/types/enum"
)

// key identifies one (action, content) combination in the point table.
type key struct {
	Action  enum.ActionType
	Content enum.ContentType
}

// pointTable is the full catalog. Reels are the growth surface and carry
// the highest comment weight; stories are ephemeral and weigh least.
var pointTable = map[key]float64{
	{enum.ActionTypeLike, enum.ContentTypePost}:     1.0,
	{enum.ActionTypeLike, enum.ContentTypeReel}:     1.0,
	{enum.ActionTypeLike, enum.ContentTypeStory}:    1.0,
	{enum.ActionTypeComment, enum.ContentTypePost}:  2.0,
	{enum.ActionTypeComment, enum.ContentTypeReel}:  3.0,
	{enum.ActionTypeComment, enum.ContentTypeStory}: 2.0,
	{enum.ActionTypeShare, enum.ContentTypePost}:    3.0,
	{enum.ActionTypeShare, enum.ContentTypeReel}:    3.0,
	{enum.ActionTypeShare, enum.ContentTypeStory}:   2.0,
}

// Points returns the point value for an engagement combination.
func Points(action enum.ActionType, content enum.ContentType) (float64, error) {
	points, ok := pointTable[key{Action: action, Content: content}]
	if !ok {
		return 0, fmt.Errorf("%w: %s on %s", types.ErrUnknownEngagement, action, content)
	}

	return points, nil
}
