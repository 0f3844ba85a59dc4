package routes

import (
	"time"

	"github.com/Am01102007/Proyecto-GoHost-sub000/models"
	"github.com/Am01102007/Proyecto-GoHost-sub000/storage"
	"github.com/Am01102007/Proyecto-GoHost-sub000/utils"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

type CreateCommentInput struct {
	Stars         int    `json:"stars" validate:"required,min=1,max=5"`
	Body          string `json:"body" validate:"required,max=2000"`
	ReservationID *uint  `json:"reservationID"`
}

func ListAccommodationComments(ctx iris.Context) {
	accommodationID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid accommodation ID", ctx)
		return
	}

	var comments []models.Comment
	if err := storage.DB.Preload("User").
		Where("accommodation_id = ?", accommodationID).
		Order("created_at DESC").
		Find(&comments).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var totalStars float64
	for _, comment := range comments {
		totalStars += float64(comment.Stars)
	}
	avgRating := 0.0
	if len(comments) > 0 {
		avgRating = totalStars / float64(len(comments))
	}

	ctx.JSON(iris.Map{
		"comments":  comments,
		"avgRating": avgRating,
	})
}

func CreateComment(ctx iris.Context) {
	accommodationID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid accommodation ID", ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input CreateCommentInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var accommodation models.Accommodation
	if err := storage.DB.First(&accommodation, accommodationID).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Accommodation not found", ctx)
		return
	}

	// One comment per user per accommodation
	var existing int64
	storage.DB.Model(&models.Comment{}).
		Where("accommodation_id = ? AND user_id = ?", accommodationID, claims.ID).
		Count(&existing)
	if existing > 0 {
		utils.CreateError(iris.StatusConflict, "Conflict", "You already commented on this accommodation", ctx)
		return
	}

	comment := models.Comment{
		UserID:          claims.ID,
		AccommodationID: accommodationID,
		ReservationID:   input.ReservationID,
		Body:            input.Body,
		Stars:           input.Stars,
	}

	if err := storage.DB.Create(&comment).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	storage.DB.Preload("User").First(&comment, comment.ID)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(comment)
}

type ReplyToCommentInput struct {
	Reply string `json:"reply" validate:"required,max=2000"`
}

// ReplyToComment lets the accommodation's host answer a guest comment.
// Ownership is resolved from the stored accommodation, not from anything
// the caller sends.
func ReplyToComment(ctx iris.Context) {
	commentID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid comment ID", ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input ReplyToCommentInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var comment models.Comment
	if err := storage.DB.First(&comment, commentID).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Comment not found", ctx)
		return
	}

	var accommodation models.Accommodation
	if err := storage.DB.First(&accommodation, comment.AccommodationID).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if accommodation.HostID != claims.ID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "Only the host may reply to comments on this accommodation", ctx)
		return
	}

	now := time.Now()
	comment.HostReply = input.Reply
	comment.HostRepliedAt = &now

	if err := storage.DB.Save(&comment).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(comment)
}

func DeleteComment(ctx iris.Context) {
	commentID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid comment ID", ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	var comment models.Comment
	if err := storage.DB.First(&comment, commentID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if comment.UserID != claims.ID {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}

	if err := storage.DB.Delete(&comment).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusNoContent)
}
