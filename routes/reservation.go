package routes

import (
	"errors"
	"time"

	"github.com/Am01102007/Proyecto-GoHost-sub000/services"
	"github.com/Am01102007/Proyecto-GoHost-sub000/storage"
	"github.com/Am01102007/Proyecto-GoHost-sub000/utils"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func GetReservationsByAccommodationID(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid accommodation ID", ctx)
		return
	}

	reservations, err := storage.NewReservationDB().FindByAccommodation(id)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(reservations)
}

func GetUserReservations(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid user ID", ctx)
		return
	}

	reservations, err := storage.NewReservationDB().FindByGuest(id)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(reservations)
}

// GetHostReservations returns reservations for all accommodations owned
// by the authenticated host.
func GetHostReservations(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	reservations, err := storage.NewReservationDB().FindByHost(userID)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(reservations)
}

type CreateReservationInput struct {
	CheckIn   time.Time `json:"checkIn" validate:"required"`
	CheckOut  time.Time `json:"checkOut" validate:"required"`
	NumGuests int       `json:"numGuests" validate:"gte=0,lte=16"`
	Note      string    `json:"note"`
}

func CreateReservation(ctx iris.Context) {
	accommodationID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid accommodation ID", ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input CreateReservationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	reservation, err := services.NewReservationService().Create(services.CreateReservationInput{
		AccommodationID: accommodationID,
		GuestID:         claims.ID,
		CheckIn:         input.CheckIn,
		CheckOut:        input.CheckOut,
		NumGuests:       input.NumGuests,
		Note:            input.Note,
	})
	if err != nil {
		WriteReservationError(err, ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(reservation)
}

type UpdateReservationInput struct {
	CheckIn  *time.Time `json:"checkIn"`
	CheckOut *time.Time `json:"checkOut"`
	Status   *string    `json:"status" validate:"omitempty,oneof=pending confirmed cancelled"`
}

func UpdateReservation(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid reservation ID", ctx)
		return
	}

	var input UpdateReservationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	reservation, err := services.NewReservationService().Update(id, services.UpdateReservationInput{
		CheckIn:  input.CheckIn,
		CheckOut: input.CheckOut,
		Status:   input.Status,
	})
	if err != nil {
		WriteReservationError(err, ctx)
		return
	}

	ctx.JSON(reservation)
}

func CancelReservation(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid reservation ID", ctx)
		return
	}

	if err := services.NewReservationService().Cancel(id); err != nil {
		WriteReservationError(err, ctx)
		return
	}

	ctx.JSON(iris.Map{"message": "Reservation cancelled"})
}

// WriteReservationError maps lifecycle errors onto HTTP status codes:
// invalid range 400, missing reference 404, overlap or cancelled-mutation
// 409, anything else 500.
func WriteReservationError(err error, ctx iris.Context) {
	switch {
	case errors.Is(err, services.ErrInvalidRange):
		utils.CreateError(iris.StatusBadRequest, "Validation Error", err.Error(), ctx)
	case errors.Is(err, services.ErrNotFound):
		utils.CreateError(iris.StatusNotFound, "Not Found", err.Error(), ctx)
	case errors.Is(err, services.ErrUnavailable):
		utils.CreateError(iris.StatusConflict, "Unavailable", err.Error(), ctx)
	case errors.Is(err, services.ErrConflict):
		utils.CreateError(iris.StatusConflict, "Conflict", err.Error(), ctx)
	default:
		utils.CreateInternalServerError(ctx)
	}
}
