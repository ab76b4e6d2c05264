package render

import (
	"github.com/maulanahdr/komentar/internal/constant"
	"github.com/maulanahdr/komentar/internal/model"
)

// Row is one comment in render order, annotated with the state the
// presentation layer needs: nesting level, whether the reply form may be
// opened here, and the in-progress draft when this node is the reply target.
type Row struct {
	Comment       model.Comment `json:"comment"`
	Level         int           `json:"level"`
	CanReply      bool          `json:"can_reply"`
	IsReplyTarget bool          `json:"is_reply_target"`
	Draft         string        `json:"draft,omitempty"`
}

// Rows flattens the forest into render order with a pure recursive walk. A
// node at level L renders its replies at L+1. maxLevel only disables the
// reply form below that depth, the data itself has no depth limit. A
// maxLevel of zero or below falls back to the default.
func Rows(forest []model.Comment, replyTargetId int64, draft string, maxLevel int) []Row {
	if maxLevel <= 0 {
		maxLevel = constant.DEFAULT_MAX_REPLY_LEVEL
	}

	rows := make([]Row, 0, len(forest))
	return walk(rows, forest, 0, replyTargetId, draft, maxLevel)
}

func walk(rows []Row, nodes []model.Comment, level int, replyTargetId int64, draft string, maxLevel int) []Row {
	for _, node := range nodes {
		row := Row{
			Comment:       node,
			Level:         level,
			CanReply:      level < maxLevel,
			IsReplyTarget: node.Id == replyTargetId,
		}
		if row.IsReplyTarget {
			row.Draft = draft
		}

		rows = append(rows, row)
		rows = walk(rows, node.Replies, level+1, replyTargetId, draft, maxLevel)
	}

	return rows
}
