package tree

import (
	"github.com/maulanahdr/komentar/internal/model"
)

// The forest is treated as immutable: every operation returns a new root
// slice, copying only the spine it touches and sharing untouched subtrees.
// All operations are total, an id that exists nowhere leaves the forest
// unchanged instead of erroring.

// FindById walks the forest depth first and returns the first match.
func FindById(forest []model.Comment, id int64) (model.Comment, bool) {
	for _, comment := range forest {
		if comment.Id == id {
			return comment, true
		}

		if found, ok := FindById(comment.Replies, id); ok {
			return found, true
		}
	}

	return model.Comment{}, false
}

// InsertRoot prepends (atFront) or appends a root comment. New optimistic
// root comments go at the front so the freshest comment is visible first.
func InsertRoot(forest []model.Comment, comment model.Comment, atFront bool) []model.Comment {
	next := make([]model.Comment, 0, len(forest)+1)

	if atFront {
		next = append(next, comment)
		return append(next, forest...)
	}

	next = append(next, forest...)
	return append(next, comment)
}

// InsertReply appends the comment to the parent's replies wherever the
// parent sits in the forest. A missing parent is a silent no-op, the UI
// already guards against replying to stale nodes.
func InsertReply(forest []model.Comment, parentId int64, comment model.Comment) []model.Comment {
	next := make([]model.Comment, len(forest))

	for i, node := range forest {
		if node.Id == parentId {
			replies := make([]model.Comment, 0, len(node.Replies)+1)
			replies = append(replies, node.Replies...)
			node.Replies = append(replies, comment)
		} else {
			node.Replies = InsertReply(node.Replies, parentId, comment)
		}
		next[i] = node
	}

	return next
}

// RemoveById removes a node from the root collection or from whichever
// replies collection contains it. Removing an absent id is a no-op, which
// makes rollback of an already-removed optimistic node safe.
func RemoveById(forest []model.Comment, id int64) []model.Comment {
	next := make([]model.Comment, 0, len(forest))

	for _, node := range forest {
		if node.Id == id {
			continue
		}

		node.Replies = RemoveById(node.Replies, id)
		next = append(next, node)
	}

	return next
}

// ReplaceById swaps the first node with a matching id for the replacement
// wholesale, children included. Used for optimistic reconciliation.
func ReplaceById(forest []model.Comment, id int64, replacement model.Comment) []model.Comment {
	next := make([]model.Comment, len(forest))

	for i, node := range forest {
		if node.Id == id {
			next[i] = replacement
			continue
		}

		node.Replies = ReplaceById(node.Replies, id, replacement)
		next[i] = node
	}

	return next
}

// UpdateLikeState sets the like flag and applies the count delta at the
// matching node. The count never drops below zero, even under a
// compensating revert racing a reconciliation.
func UpdateLikeState(forest []model.Comment, id int64, liked bool, delta int64) []model.Comment {
	next := make([]model.Comment, len(forest))

	for i, node := range forest {
		if node.Id == id {
			node.IsLiked = liked
			node.LikesCount += delta
			if node.LikesCount < 0 {
				node.LikesCount = 0
			}
		} else {
			node.Replies = UpdateLikeState(node.Replies, id, liked, delta)
		}
		next[i] = node
	}

	return next
}
