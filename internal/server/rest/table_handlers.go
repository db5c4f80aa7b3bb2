package rest

import (
	"net/http"

	"github.com/dmitrijs2005/tabliya/internal/server/models"
	"github.com/dmitrijs2005/tabliya/internal/server/services"
	"github.com/gin-gonic/gin"
)

const (
	msgTableCreated = "Table created successfully"
	msgTableUpdated = "Table updated successfully"
	msgTableDeleted = "Table deleted successfully"
)

type tableHandler struct {
	svc TableService
}

type createTableRequest struct {
	Number   *int   `json:"number" binding:"required"`
	Capacity *int   `json:"capacity" binding:"required,min=1"`
	Location string `json:"location" binding:"omitempty,oneof=indoor outdoor balcony vip"`
	Status   string `json:"status" binding:"omitempty,oneof=available occupied reserved out_of_service"`
	Notes    string `json:"notes" binding:"max=200"`
}

type updateTableRequest struct {
	Number   *int    `json:"number"`
	Capacity *int    `json:"capacity" binding:"omitempty,min=1"`
	Location *string `json:"location" binding:"omitempty,oneof=indoor outdoor balcony vip"`
	Status   *string `json:"status" binding:"omitempty,oneof=available occupied reserved out_of_service"`
	Notes    *string `json:"notes" binding:"omitempty,max=200"`
}

func (h *tableHandler) list(c *gin.Context) {
	tables, err := h.svc.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[*models.Table]{Success: true, Count: len(tables), Data: tables})
}

func (h *tableHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	t, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemResponse[*models.Table]{Success: true, Data: t})
}

func (h *tableHandler) create(c *gin.Context) {
	var req createTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, bindError(err, msgInvalidBody))
		return
	}

	t, err := h.svc.Create(c.Request.Context(), &models.Table{
		Number:   *req.Number,
		Capacity: *req.Capacity,
		Location: models.TableLocation(req.Location),
		Status:   models.TableStatus(req.Status),
		Notes:    req.Notes,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, itemResponse[*models.Table]{Success: true, Message: msgTableCreated, Data: t})
}

func (h *tableHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req updateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, bindError(err, msgInvalidBody))
		return
	}

	patch := services.TablePatch{
		Number:   req.Number,
		Capacity: req.Capacity,
		Notes:    req.Notes,
	}
	if req.Location != nil {
		loc := models.TableLocation(*req.Location)
		patch.Location = &loc
	}
	if req.Status != nil {
		st := models.TableStatus(*req.Status)
		patch.Status = &st
	}

	t, err := h.svc.Update(c.Request.Context(), id, patch)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemResponse[*models.Table]{Success: true, Message: msgTableUpdated, Data: t})
}

func (h *tableHandler) delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	t, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemResponse[*models.Table]{Success: true, Message: msgTableDeleted, Data: t})
}
