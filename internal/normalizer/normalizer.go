package normalizer

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/maulanahdr/komentar/internal/constant"
	"github.com/maulanahdr/komentar/internal/model"
	"go.uber.org/zap"
)

// The upstream content API has changed response shapes more than once, so
// everything here is defensive: no input may make these functions error or
// panic. Unrecognized payloads degrade to placeholders or empty lists.

// Int64Field reads a numeric field from a decoded JSON object. The second
// return reports whether the field was actually present and numeric.
func Int64Field(raw map[string]interface{}, key string) (int64, bool) {
	v, ok := raw[key]
	if !ok || v == nil {
		return 0, false
	}

	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case uint64:
		return int64(n), true
	}

	return 0, false
}

func StringField(raw map[string]interface{}, key string) (string, bool) {
	v, ok := raw[key]
	if !ok || v == nil {
		return "", false
	}

	s, ok := v.(string)
	return s, ok
}

func BoolField(raw map[string]interface{}, key string) (bool, bool) {
	v, ok := raw[key]
	if !ok || v == nil {
		return false, false
	}

	b, ok := v.(bool)
	return b, ok
}

// TimeField parses RFC3339 timestamps, with and without fractional seconds.
func TimeField(raw map[string]interface{}, key string) (time.Time, bool) {
	s, ok := StringField(raw, key)
	if !ok {
		return time.Time{}, false
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, false
		}
	}

	return t.UTC(), true
}

// Comment converts one backend comment object into the canonical record.
// A nil payload yields the fixed placeholder so callers can always render.
func Comment(raw map[string]interface{}, fallbackMaterialId int64, log *zap.Logger) model.Comment {
	if raw == nil {
		log.Warn("normalizing nil comment payload, emitting placeholder",
			zap.Int64("materialId", fallbackMaterialId))

		return model.Comment{
			Id:         -1,
			MaterialId: fallbackMaterialId,
			Username:   constant.PLACEHOLDER_USERNAME,
			Content:    constant.PLACEHOLDER_CONTENT,
			LikesCount: 0,
			Replies:    []model.Comment{},
		}
	}

	comment := model.Comment{
		Replies: []model.Comment{},
	}

	comment.Id, _ = Int64Field(raw, "id")

	comment.MaterialId = fallbackMaterialId
	if materialId, ok := Int64Field(raw, "material_id"); ok {
		comment.MaterialId = materialId
	}

	comment.UserId, _ = Int64Field(raw, "user_id")

	comment.Username = constant.DEFAULT_USERNAME
	if username, ok := StringField(raw, "username"); ok {
		comment.Username = username
	}

	if avatar, ok := StringField(raw, "user_avatar"); ok {
		comment.UserAvatar = &avatar
	}

	comment.Content, _ = StringField(raw, "content")

	if parentId, ok := Int64Field(raw, "parent_id"); ok {
		comment.ParentId = &parentId
	}

	comment.LikesCount, _ = Int64Field(raw, "likes_count")
	if comment.LikesCount < 0 {
		comment.LikesCount = 0
	}

	comment.IsLiked, _ = BoolField(raw, "is_liked")

	comment.CreatedAt = time.Now().UTC()
	if createdAt, ok := TimeField(raw, "created_at"); ok {
		comment.CreatedAt = createdAt
	}

	comment.UpdatedAt = comment.CreatedAt
	if updatedAt, ok := TimeField(raw, "updated_at"); ok {
		comment.UpdatedAt = updatedAt
	}

	if replies, ok := raw["replies"].([]interface{}); ok {
		for _, reply := range replies {
			replyMap, _ := reply.(map[string]interface{})
			comment.Replies = append(comment.Replies, Comment(replyMap, comment.MaterialId, log))
		}
	}

	return comment
}

// List converts a raw list-response body into a CommentList. Six shapes are
// tolerated, tried in priority order: {items}, {comments}, bare array,
// {data:[...]}, {data:{items}}, {data:{comments}}. The requested page is only
// a fallback: a current_page in the payload wins, the upstream may clamp
// out-of-range requests.
func List(body []byte, materialId int64, page int64, log *zap.Logger) model.CommentList {
	if page < 1 {
		page = 1
	}

	list := model.CommentList{
		Items:       []model.Comment{},
		Total:       0,
		Pages:       1,
		CurrentPage: page,
	}

	var decoded interface{}
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		log.Warn("failed to decode comment list body", zap.Error(err))
		return list
	}

	items, meta, ok := resolveListShape(decoded)
	if !ok {
		log.Warn("unexpected comment list shape", zap.Int64("materialId", materialId))
		return list
	}

	for _, item := range items {
		itemMap, _ := item.(map[string]interface{})
		list.Items = append(list.Items, Comment(itemMap, materialId, log))
	}

	list.Total = int64(len(items))
	if meta != nil {
		if total, ok := Int64Field(meta, "total"); ok {
			list.Total = total
		}
		if pages, ok := Int64Field(meta, "pages"); ok {
			list.Pages = pages
		}
		if currentPage, ok := Int64Field(meta, "current_page"); ok {
			list.CurrentPage = currentPage
		}
	}

	return list
}

// resolveListShape returns the item array plus the object carrying the
// total/pages/current_page triple, or ok=false when nothing matches.
func resolveListShape(decoded interface{}) ([]interface{}, map[string]interface{}, bool) {
	if arr, ok := decoded.([]interface{}); ok {
		return arr, nil, true
	}

	obj, ok := decoded.(map[string]interface{})
	if !ok {
		return nil, nil, false
	}

	if arr, ok := obj["items"].([]interface{}); ok {
		return arr, obj, true
	}
	if arr, ok := obj["comments"].([]interface{}); ok {
		return arr, obj, true
	}

	switch data := obj["data"].(type) {
	case []interface{}:
		return data, obj, true
	case map[string]interface{}:
		if arr, ok := data["items"].([]interface{}); ok {
			return arr, data, true
		}
		if arr, ok := data["comments"].([]interface{}); ok {
			return arr, data, true
		}
	}

	return nil, nil, false
}

// ExtractComment pulls a backend comment record out of a write-response
// body: data.comment, comment, data, or the bare object, in that order.
func ExtractComment(body []byte, log *zap.Logger) (map[string]interface{}, bool) {
	if len(body) == 0 {
		return nil, false
	}

	var decoded interface{}
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		log.Warn("failed to decode comment body", zap.Error(err))
		return nil, false
	}

	obj, ok := decoded.(map[string]interface{})
	if !ok {
		return nil, false
	}

	if data, ok := obj["data"].(map[string]interface{}); ok {
		if comment, ok := data["comment"].(map[string]interface{}); ok {
			return comment, true
		}
		return data, true
	}

	if comment, ok := obj["comment"].(map[string]interface{}); ok {
		return comment, true
	}

	return obj, true
}
