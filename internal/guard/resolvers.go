package guard

import (
	"github.com/duduji/api/internal/models"

	"gorm.io/gorm"
)

// The three route shapes: the id is the group itself, a dazim inside one, or
// a comment on a dazim inside one.

func GroupByID() GroupResolver {
	return GroupResolver{
		Name: "Group",
		Resolve: func(db *gorm.DB, id string) (string, error) {
			var group models.Group
			if err := db.Select("id").First(&group, "id = ?", id).Error; err != nil {
				return "", err
			}
			return group.ID, nil
		},
	}
}

func GroupByDazimID() GroupResolver {
	return GroupResolver{
		Name: "Dazim",
		Resolve: func(db *gorm.DB, id string) (string, error) {
			var dazim models.Dazim
			if err := db.Select("group_id").First(&dazim, "id = ?", id).Error; err != nil {
				return "", err
			}
			return dazim.GroupID, nil
		},
	}
}

func GroupByCommentID() GroupResolver {
	return GroupResolver{
		Name: "Comment",
		Resolve: func(db *gorm.DB, id string) (string, error) {
			var comment models.DazimComment
			if err := db.Select("dazim_id").First(&comment, "id = ?", id).Error; err != nil {
				return "", err
			}
			var dazim models.Dazim
			if err := db.Select("group_id").First(&dazim, "id = ?", comment.DazimID).Error; err != nil {
				return "", err
			}
			return dazim.GroupID, nil
		},
	}
}

func DazimWriter() WriterResolver {
	return WriterResolver{
		Name: "Dazim",
		Resolve: func(db *gorm.DB, id string) (string, error) {
			var dazim models.Dazim
			if err := db.Select("user_id").First(&dazim, "id = ?", id).Error; err != nil {
				return "", err
			}
			return dazim.UserID, nil
		},
	}
}

func CommentWriter() WriterResolver {
	return WriterResolver{
		Name: "Comment",
		Resolve: func(db *gorm.DB, id string) (string, error) {
			var comment models.DazimComment
			if err := db.Select("user_id").First(&comment, "id = ?", id).Error; err != nil {
				return "", err
			}
			return comment.UserID, nil
		},
	}
}
