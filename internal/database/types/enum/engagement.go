package enum

import (
	"errors"
	"fmt"
)

// ErrUnknownEnum is returned when a storage label cannot be parsed back
// into its enum value.
var ErrUnknownEnum = errors.New("unknown enum label")

// ActionType represents the kind of engagement a user performed.
type ActionType int

const (
	ActionTypeLike ActionType = iota
	ActionTypeComment
	ActionTypeShare
)

// actionTypeNames maps action types to their storage labels.
var actionTypeNames = map[ActionType]string{
	ActionTypeLike:    "like",
	ActionTypeComment: "comment",
	ActionTypeShare:   "share",
}

// String returns the storage label for the action type.
func (a ActionType) String() string {
	if name, ok := actionTypeNames[a]; ok {
		return name
	}

	return fmt.Sprintf("ActionType(%d)", int(a))
}

// ActionTypeString parses a storage label back into an ActionType.
func ActionTypeString(s string) (ActionType, error) {
	for a, name := range actionTypeNames {
		if name == s {
			return a, nil
		}
	}

	return 0, fmt.Errorf("%w: ActionType %q", ErrUnknownEnum, s)
}

// Reversible reports whether the action can be undone by the actor.
// Likes toggle off and comments can be deleted; shares are permanent.
func (a ActionType) Reversible() bool {
	return a == ActionTypeLike || a == ActionTypeComment
}

// ContentType represents the surface the engagement happened on.
type ContentType int

const (
	ContentTypePost ContentType = iota
	ContentTypeReel
	ContentTypeStory
)

// contentTypeNames maps content types to their storage labels.
var contentTypeNames = map[ContentType]string{
	ContentTypePost:  "post",
	ContentTypeReel:  "reel",
	ContentTypeStory: "story",
}

// String returns the storage label for the content type.
func (c ContentType) String() string {
	if name, ok := contentTypeNames[c]; ok {
		return name
	}

	return fmt.Sprintf("ContentType(%d)", int(c))
}

// ContentTypeString parses a storage label back into a ContentType.
func ContentTypeString(s string) (ContentType, error) {
	for c, name := range contentTypeNames {
		if name == s {
			return c, nil
		}
	}

	return 0, fmt.Errorf("%w: ContentType %q", ErrUnknownEnum, s)
}
