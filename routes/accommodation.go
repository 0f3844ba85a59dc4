package routes

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Am01102007/Proyecto-GoHost-sub000/models"
	"github.com/Am01102007/Proyecto-GoHost-sub000/services"
	"github.com/Am01102007/Proyecto-GoHost-sub000/storage"
	"github.com/Am01102007/Proyecto-GoHost-sub000/utils"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm/clause"
)

func CreateAccommodation(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input CreateAccommodationInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	amenities := input.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	amenitiesJSON, _ := json.Marshal(amenities)

	imagesArr := insertImages(input.Images, "")
	if imagesArr == nil {
		imagesArr = []string{}
	}
	imagesJSON, _ := json.Marshal(imagesArr)

	accommodation := models.Accommodation{
		HostID:       claims.ID,
		Title:        input.Title,
		Description:  input.Description,
		AddressLine:  input.AddressLine,
		City:         input.City,
		Country:      input.Country,
		Lat:          input.Lat,
		Lng:          input.Lng,
		Capacity:     input.Capacity,
		Bedrooms:     input.Bedrooms,
		Bathrooms:    input.Bathrooms,
		NightlyPrice: input.NightlyPrice,
		Currency:     input.Currency,
		Amenities:    string(amenitiesJSON),
		Images:       string(imagesJSON),
		IsActive:     input.IsActive,
	}

	// Fill coordinates from the address when the client didn't send any.
	// Geocoding failures are non-fatal; the listing just has no pin yet.
	if accommodation.Lat == 0 && accommodation.Lng == 0 {
		query := strings.Join([]string{input.AddressLine, input.City, input.Country}, ", ")
		if geo, geoErr := services.GeocodeAddress(query); geoErr == nil {
			accommodation.Lat = geo.Lat
			accommodation.Lng = geo.Lng
		} else {
			log.Printf("geocoding failed for %q: %v", query, geoErr)
		}
	}

	result := storage.DB.Create(&accommodation)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(accommodation)
}

func GetAccommodation(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	accommodation := getAccommodationByID(id, ctx)
	if accommodation == nil {
		return
	}

	ctx.JSON(accommodation)
}

func GetAccommodationsByUserID(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	var accommodations []models.Accommodation
	accommodationsExist := storage.DB.Preload(clause.Associations).Where("host_id = ?", id).Find(&accommodations)

	if accommodationsExist.Error != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", accommodationsExist.Error.Error(), ctx)
		return
	}

	ctx.JSON(accommodations)
}

// SearchAccommodations filters active listings by city and guest count.
func SearchAccommodations(ctx iris.Context) {
	city := ctx.URLParamDefault("city", "")
	guests := ctx.URLParamIntDefault("guests", 0)

	q := storage.DB.Where("is_active = true")
	if city != "" {
		q = q.Where("lower(city) LIKE lower(?)", "%"+city+"%")
	}
	if guests > 0 {
		q = q.Where("capacity >= ?", guests)
	}

	var accommodations []models.Accommodation
	if err := q.Order("created_at DESC").Limit(50).Find(&accommodations).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(accommodations)
}

func UpdateAccommodation(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	accommodation := getAccommodationByID(id, ctx)
	if accommodation == nil {
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	if accommodation.HostID != claims.ID {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}

	var input UpdateAccommodationInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.Title != "" {
		accommodation.Title = input.Title
	}
	if input.Description != "" {
		accommodation.Description = input.Description
	}
	if input.NightlyPrice > 0 {
		accommodation.NightlyPrice = input.NightlyPrice
	}
	if input.Capacity > 0 {
		accommodation.Capacity = input.Capacity
	}
	if input.Amenities != nil {
		amenitiesJSON, _ := json.Marshal(input.Amenities)
		accommodation.Amenities = string(amenitiesJSON)
	}
	if input.Images != nil {
		imagesArr := insertImages(input.Images, id)
		imagesJSON, _ := json.Marshal(imagesArr)
		accommodation.Images = string(imagesJSON)
	}
	if input.IsActive != nil {
		accommodation.IsActive = input.IsActive
	}

	if err := storage.DB.Save(accommodation).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(accommodation)
}

func DeleteAccommodation(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	var accommodation models.Accommodation
	accommodationExists := storage.DB.Find(&accommodation, id)

	if accommodationExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	if accommodation.HostID != claims.ID {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}

	accommodationDeleted := storage.DB.Delete(&models.Accommodation{}, id)

	if accommodationDeleted.Error != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", accommodationDeleted.Error.Error(), ctx)
		return
	}

	// Clean up hosted images; failures only leave orphans in Cloudinary
	if accommodation.Images != "" {
		var images []string
		if err := json.Unmarshal([]byte(accommodation.Images), &images); err == nil {
			for _, image := range images {
				storage.DeleteImage(image)
			}
		}
	}

	ctx.StatusCode(iris.StatusNoContent)
}

func getAccommodationByID(id string, ctx iris.Context) *models.Accommodation {
	var accommodation models.Accommodation
	accommodationExists := storage.DB.Preload("Host").Preload("Comments").Preload("Comments.User").
		Where("id = ?", id).Find(&accommodation)

	if accommodationExists.Error != nil {
		utils.CreateInternalServerError(ctx)
		return nil
	}

	if accommodationExists.RowsAffected == 0 {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Accommodation not found", ctx)
		return nil
	}

	return &accommodation
}

// insertImages uploads base64 payloads to Cloudinary and passes already
// hosted URLs through. Individual upload failures are skipped.
func insertImages(images []string, accommodationID string) []string {
	var imagesArr []string
	for i, image := range images {
		if image == "" {
			continue
		}
		if strings.Contains(image, "res.cloudinary.com") {
			imagesArr = append(imagesArr, image)
			continue
		}

		timestamp := time.Now().UnixNano() / int64(time.Millisecond)
		publicID := fmt.Sprintf("accommodation_%d_%d", timestamp, i)
		if accommodationID != "" {
			publicID = "accommodation/" + accommodationID + "/" + publicID
		}

		if url := storage.UploadBase64Image(image, publicID); url != "" {
			imagesArr = append(imagesArr, url)
		} else {
			log.Printf("failed to upload image with publicID: %s", publicID)
		}
	}
	return imagesArr
}

type CreateAccommodationInput struct {
	Title        string   `json:"title" validate:"required,max=256"`
	Description  string   `json:"description" validate:"max=4000"`
	AddressLine  string   `json:"addressLine" validate:"required"`
	City         string   `json:"city" validate:"required"`
	Country      string   `json:"country" validate:"required"`
	Lat          float64  `json:"lat"`
	Lng          float64  `json:"lng"`
	Capacity     int      `json:"capacity" validate:"required,gte=1,lte=32"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    int      `json:"bathrooms"`
	NightlyPrice float32  `json:"nightlyPrice" validate:"required,gt=0"`
	Currency     string   `json:"currency"`
	Amenities    []string `json:"amenities"`
	Images       []string `json:"images"`
	IsActive     *bool    `json:"isActive"`
}

type UpdateAccommodationInput struct {
	Title        string   `json:"title" validate:"max=256"`
	Description  string   `json:"description" validate:"max=4000"`
	NightlyPrice float32  `json:"nightlyPrice"`
	Capacity     int      `json:"capacity" validate:"lte=32"`
	Amenities    []string `json:"amenities"`
	Images       []string `json:"images"`
	IsActive     *bool    `json:"isActive"`
}
