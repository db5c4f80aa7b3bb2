package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/tabliya/internal/server/models"
	"github.com/dmitrijs2005/tabliya/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgDishCreated = "Dish created successfully"
	msgDishUpdated = "Dish Updated successfully"
	msgDishDeleted = "Dish deleted successfully"

	imageField = "image"
)

type dishHandler struct {
	svc DishService
}

type createDishRequest struct {
	Name        string  `json:"name" form:"name" binding:"required,min=2,max=100"`
	Description string  `json:"description" form:"description" binding:"omitempty,min=10,max=1000"`
	Price       float64 `json:"price" form:"price" binding:"required,gt=0"`
	Category    string  `json:"category" form:"category" binding:"omitempty,oneof=starter main dessert drink"`
	Image       string  `json:"image" form:"-" binding:"omitempty,url"`
	Available   *bool   `json:"available" form:"available"`
}

type updateDishRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=2,max=100"`
	Description *string  `json:"description" binding:"omitempty,min=10,max=1000"`
	Price       *float64 `json:"price" binding:"omitempty,gt=0"`
	Category    *string  `json:"category" binding:"omitempty,oneof=starter main dessert drink"`
	Image       *string  `json:"image" binding:"omitempty,url"`
	Available   *bool    `json:"available"`
}

type listResponse[T any] struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
	Data    []T  `json:"data"`
}

type itemResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// pathID returns the :id parameter when it is a well-formed identifier.
func pathID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		abortWithError(c, &invalidIDError{id: id})
		return "", false
	}
	return id, true
}

func (h *dishHandler) list(c *gin.Context) {
	dishes, err := h.svc.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[*models.Dish]{Success: true, Count: len(dishes), Data: dishes})
}

func (h *dishHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	d, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemResponse[*models.Dish]{Success: true, Data: d})
}

func (h *dishHandler) create(c *gin.Context) {
	var req createDishRequest
	if err := c.ShouldBind(&req); err != nil {
		abortWithError(c, bindError(err, msgInvalidBody))
		return
	}

	img, closeImage, err := formImage(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer closeImage()

	available := true
	if req.Available != nil {
		available = *req.Available
	}
	d, err := h.svc.Create(c.Request.Context(), &models.Dish{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    models.DishCategory(req.Category),
		Image:       req.Image,
		Available:   available,
	}, img)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, itemResponse[*models.Dish]{Success: true, Message: msgDishCreated, Data: d})
}

// formImage opens the optional multipart image. It returns a nil image for
// JSON requests and multipart requests without a file.
func formImage(c *gin.Context) (*services.Image, func(), error) {
	noop := func() {}
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return nil, noop, nil
	}

	fh, err := c.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, &bodyError{message: msgInvalidBody, err: err}
	}

	f, err := fh.Open()
	if err != nil {
		return nil, noop, fmt.Errorf("error opening uploaded image: %w", err)
	}
	return &services.Image{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}

func (h *dishHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req updateDishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, bindError(err, msgInvalidBody))
		return
	}

	patch := services.DishPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		Available:   req.Available,
	}
	if req.Category != nil {
		cat := models.DishCategory(*req.Category)
		patch.Category = &cat
	}

	d, err := h.svc.Update(c.Request.Context(), id, patch)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemResponse[*models.Dish]{Success: true, Message: msgDishUpdated, Data: d})
}

func (h *dishHandler) delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	d, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemResponse[*models.Dish]{Success: true, Message: msgDishDeleted, Data: d})
}
