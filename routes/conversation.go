package routes

import (
	"time"

	"github.com/Am01102007/Proyecto-GoHost-sub000/models"
	"github.com/Am01102007/Proyecto-GoHost-sub000/storage"
	"github.com/Am01102007/Proyecto-GoHost-sub000/utils"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"golang.org/x/exp/slices"
)

type CreateConversationInput struct {
	HostID          uint   `json:"hostID" validate:"required"`
	AccommodationID uint   `json:"accommodationID"`
	Text            string `json:"text" validate:"required,max=4000"`
}

func CreateConversation(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input CreateConversationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	// Reuse an existing conversation for the same pair and listing
	var conversation models.Conversation
	existing := storage.DB.
		Where("guest_id = ? AND host_id = ? AND accommodation_id = ?", claims.ID, input.HostID, input.AccommodationID).
		Limit(1).Find(&conversation)

	if existing.RowsAffected == 0 {
		conversation = models.Conversation{
			GuestID:         claims.ID,
			HostID:          input.HostID,
			AccommodationID: input.AccommodationID,
		}
		if err := storage.DB.Create(&conversation).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	message := models.Message{
		ConversationID: conversation.ID,
		SenderID:       claims.ID,
		ReceiverID:     input.HostID,
		Text:           input.Text,
	}
	if err := storage.DB.Create(&message).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	storage.DB.Preload("Messages").Preload("Guest").Preload("Host").First(&conversation, conversation.ID)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(conversation)
}

func GetUserConversations(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var conversations []models.Conversation
	if err := storage.DB.Preload("Guest").Preload("Host").
		Where("guest_id = ? OR host_id = ?", userID, userID).
		Order("updated_at DESC").
		Find(&conversations).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(conversations)
}

type SendMessageInput struct {
	Text string `json:"text" validate:"required,max=4000"`
}

func SendMessage(ctx iris.Context) {
	conversationID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid conversation ID", ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input SendMessageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var conversation models.Conversation
	if err := storage.DB.First(&conversation, conversationID).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Conversation not found", ctx)
		return
	}

	participants := []uint{conversation.GuestID, conversation.HostID}
	if !slices.Contains(participants, claims.ID) {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}

	receiverID := conversation.GuestID
	if claims.ID == conversation.GuestID {
		receiverID = conversation.HostID
	}

	message := models.Message{
		ConversationID: conversation.ID,
		SenderID:       claims.ID,
		ReceiverID:     receiverID,
		Text:           input.Text,
	}
	if err := storage.DB.Create(&message).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	storage.DB.Model(&conversation).Update("updated_at", time.Now())

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(message)
}

func GetConversationMessages(ctx iris.Context) {
	conversationID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid conversation ID", ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	var conversation models.Conversation
	if err := storage.DB.First(&conversation, conversationID).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Conversation not found", ctx)
		return
	}

	if claims.ID != conversation.GuestID && claims.ID != conversation.HostID {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}

	var messages []models.Message
	if err := storage.DB.Where("conversation_id = ?", conversationID).
		Order("created_at").
		Find(&messages).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	// Mark messages addressed to the reader as seen
	now := time.Now()
	storage.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND seen_at IS NULL", conversationID, claims.ID).
		Update("seen_at", now)

	ctx.JSON(messages)
}
