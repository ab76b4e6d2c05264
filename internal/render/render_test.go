package render

import (
	"testing"

	"github.com/maulanahdr/komentar/internal/model"
	"github.com/stretchr/testify/require"
)

func comment(id int64, replies ...model.Comment) model.Comment {
	if replies == nil {
		replies = []model.Comment{}
	}
	return model.Comment{Id: id, Replies: replies}
}

func TestRowsFlattensDepthFirst(t *testing.T) {
	forest := []model.Comment{
		comment(1, comment(2, comment(3)), comment(4)),
		comment(5),
	}

	rows := Rows(forest, 0, "", 5)
	require.Len(t, rows, 5)

	order := make([]int64, 0, len(rows))
	levels := make([]int, 0, len(rows))
	for _, row := range rows {
		order = append(order, row.Comment.Id)
		levels = append(levels, row.Level)
	}

	require.Equal(t, []int64{1, 2, 3, 4, 5}, order)
	require.Equal(t, []int{0, 1, 2, 1, 0}, levels)
}

func TestRowsReplyFormCutoff(t *testing.T) {
	forest := []model.Comment{
		comment(1, comment(2, comment(3, comment(4)))),
	}

	rows := Rows(forest, 0, "", 2)

	require.True(t, rows[0].CanReply)
	require.True(t, rows[1].CanReply)
	require.False(t, rows[2].CanReply, "level 2 is at the cutoff")
	require.False(t, rows[3].CanReply)
}

func TestRowsDraftOnlyOnReplyTarget(t *testing.T) {
	forest := []model.Comment{
		comment(1, comment(2)),
		comment(3),
	}

	rows := Rows(forest, 2, "half typed", 5)

	require.False(t, rows[0].IsReplyTarget)
	require.Empty(t, rows[0].Draft)
	require.True(t, rows[1].IsReplyTarget)
	require.Equal(t, "half typed", rows[1].Draft)
	require.False(t, rows[2].IsReplyTarget)
}

func TestRowsDefaultMaxLevel(t *testing.T) {
	// Build a chain deeper than the default cutoff of five levels.
	node := comment(7)
	for id := int64(6); id >= 1; id-- {
		node = comment(id, node)
	}

	rows := Rows([]model.Comment{node}, 0, "", 0)
	require.Len(t, rows, 7)

	require.True(t, rows[4].CanReply, "level 4 is still below the default cutoff")
	require.False(t, rows[5].CanReply)
	require.False(t, rows[6].CanReply)
}

func TestRowsEmptyForest(t *testing.T) {
	rows := Rows(nil, 0, "", 5)
	require.Empty(t, rows)
}
