package tree

import (
	"testing"

	"github.com/maulanahdr/komentar/internal/model"
	"github.com/stretchr/testify/require"
)

func comment(id int64, replies ...model.Comment) model.Comment {
	if replies == nil {
		replies = []model.Comment{}
	}
	return model.Comment{Id: id, Content: "c", Replies: replies}
}

// forest: 1(2(3), 4), 5
func sampleForest() []model.Comment {
	return []model.Comment{
		comment(1, comment(2, comment(3)), comment(4)),
		comment(5),
	}
}

func TestFindById(t *testing.T) {
	forest := sampleForest()

	for _, id := range []int64{1, 2, 3, 4, 5} {
		found, ok := FindById(forest, id)
		require.True(t, ok, "id %d should be found", id)
		require.Equal(t, id, found.Id)
	}

	_, ok := FindById(forest, 42)
	require.False(t, ok)
}

func TestInsertRoot(t *testing.T) {
	forest := sampleForest()

	front := InsertRoot(forest, comment(10), true)
	require.Equal(t, int64(10), front[0].Id, "atFront should prepend")
	require.Len(t, front, 3)

	back := InsertRoot(forest, comment(11), false)
	require.Equal(t, int64(11), back[len(back)-1].Id, "atFront false should append")

	require.Len(t, forest, 2, "the input forest must not be mutated")
}

func TestInsertReplyAppendsToNestedParent(t *testing.T) {
	forest := sampleForest()

	next := InsertReply(forest, 2, comment(20))

	parent, ok := FindById(next, 2)
	require.True(t, ok)
	require.Len(t, parent.Replies, 2)
	require.Equal(t, int64(20), parent.Replies[1].Id, "new replies append at the end")

	original, _ := FindById(forest, 2)
	require.Len(t, original.Replies, 1, "the input forest must not be mutated")
}

func TestInsertReplyMissingParentIsNoOp(t *testing.T) {
	forest := sampleForest()

	next := InsertReply(forest, 7, comment(20))

	_, ok := FindById(next, 20)
	require.False(t, ok)
	require.Equal(t, forest, next)
}

func TestRemoveById(t *testing.T) {
	forest := sampleForest()

	next := RemoveById(forest, 2)
	_, ok := FindById(next, 2)
	require.False(t, ok)
	_, ok = FindById(next, 3)
	require.False(t, ok, "removing a node removes its subtree")
	_, ok = FindById(next, 4)
	require.True(t, ok, "siblings survive")

	root := RemoveById(forest, 5)
	require.Len(t, root, 1, "root nodes can be removed too")
}

func TestRemoveByIdIsIdempotent(t *testing.T) {
	forest := sampleForest()

	once := RemoveById(forest, 3)
	twice := RemoveById(once, 3)

	require.Equal(t, once, twice)
}

func TestRemoveByIdAbsentIdLeavesForest(t *testing.T) {
	forest := sampleForest()
	require.Equal(t, forest, RemoveById(forest, 42))
}

func TestReplaceById(t *testing.T) {
	forest := sampleForest()

	replacement := comment(3)
	replacement.Content = "edited"
	replacement.Replies = []model.Comment{comment(30)}

	next := ReplaceById(forest, 3, replacement)

	found, ok := FindById(next, 3)
	require.True(t, ok)
	require.Equal(t, "edited", found.Content)
	require.Len(t, found.Replies, 1, "children come from the replacement, not the old node")
}

func TestReplaceByIdWithItselfIsNoOp(t *testing.T) {
	forest := sampleForest()

	c := comment(99)
	inserted := InsertRoot(forest, c, true)
	replaced := ReplaceById(inserted, c.Id, c)

	require.Equal(t, inserted, replaced)
}

func TestReplaceByIdAbsentIdLeavesForest(t *testing.T) {
	forest := sampleForest()
	require.Equal(t, forest, ReplaceById(forest, 42, comment(42)))
}

func TestUpdateLikeState(t *testing.T) {
	forest := sampleForest()
	forest[0].Replies[0].LikesCount = 3

	next := UpdateLikeState(forest, 2, true, 1)

	liked, _ := FindById(next, 2)
	require.True(t, liked.IsLiked)
	require.Equal(t, int64(4), liked.LikesCount)

	untouched, _ := FindById(next, 4)
	require.False(t, untouched.IsLiked, "other nodes pass through unchanged")

	reverted := UpdateLikeState(next, 2, false, -1)
	original, _ := FindById(reverted, 2)
	require.False(t, original.IsLiked)
	require.Equal(t, int64(3), original.LikesCount)
}

func TestUpdateLikeStateNeverGoesNegative(t *testing.T) {
	forest := sampleForest()

	next := UpdateLikeState(forest, 5, false, -1)

	node, _ := FindById(next, 5)
	require.Equal(t, int64(0), node.LikesCount, "likes count must never drop below zero")
}
