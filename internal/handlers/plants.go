package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gardenbook/api/internal/ids"
	"gardenbook/api/internal/models"
	"gardenbook/api/internal/repository"
	"gardenbook/api/internal/service"
)

type plantResponse struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Name          string     `json:"name"`
	Species       string     `json:"species"`
	Description   string     `json:"description"`
	LastWateredAt *time.Time `json:"lastWateredAt"`
	PhotoURL      *string    `json:"photoUrl"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func toPlantResponse(plant models.Plant) plantResponse {
	return plantResponse{
		ID:            plant.ID,
		UserID:        plant.UserID,
		Name:          plant.Name,
		Species:       plant.Species,
		Description:   plant.Description,
		LastWateredAt: plant.LastWateredAt,
		PhotoURL:      plant.PhotoURL,
		CreatedAt:     plant.CreatedAt,
		UpdatedAt:     plant.UpdatedAt,
	}
}

type createPlantRequest struct {
	Name          string     `json:"name" binding:"required"`
	Species       string     `json:"species"`
	Description   string     `json:"description"`
	LastWateredAt *time.Time `json:"lastWateredAt"`
}

func (h HandlerSet) CreatePlant(c *gin.Context) {
	var req createPlantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}

	plant := models.Plant{
		ID:            ids.New(),
		UserID:        c.Param("userId"),
		Name:          req.Name,
		Species:       req.Species,
		Description:   req.Description,
		LastWateredAt: req.LastWateredAt,
	}

	if err := h.plants.Create(c.Request.Context(), plant); err != nil {
		h.serverError(c, err, "create plant failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"plant": toPlantResponse(plant)})
}

func (h HandlerSet) ListPlants(c *gin.Context) {
	plants, err := h.plants.ListByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.serverError(c, err, "list plants failed")
		return
	}

	items := make([]plantResponse, 0, len(plants))
	for _, plant := range plants {
		items = append(items, toPlantResponse(plant))
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h HandlerSet) GetPlant(c *gin.Context) {
	plant, ok := h.ownPlant(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"plant": toPlantResponse(plant)})
}

type updatePlantRequest struct {
	Name          *string    `json:"name"`
	Species       *string    `json:"species"`
	Description   *string    `json:"description"`
	LastWateredAt *time.Time `json:"lastWateredAt"`
}

func (h HandlerSet) UpdatePlant(c *gin.Context) {
	if _, ok := h.ownPlant(c); !ok {
		return
	}

	var req updatePlantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plant data"})
		return
	}

	plant, err := h.plants.Update(c.Request.Context(), c.Param("plantId"), repository.UpdatePlantParams{
		Name:          req.Name,
		Species:       req.Species,
		Description:   req.Description,
		LastWateredAt: req.LastWateredAt,
	})
	if err != nil {
		if errors.Is(err, repository.ErrPlantNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "plant not found"})
			return
		}
		h.serverError(c, err, "update plant failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"plant": toPlantResponse(plant)})
}

func (h HandlerSet) DeletePlant(c *gin.Context) {
	if _, ok := h.ownPlant(c); !ok {
		return
	}

	if err := h.plants.Delete(c.Request.Context(), c.Param("plantId")); err != nil {
		if errors.Is(err, repository.ErrPlantNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "plant not found"})
			return
		}
		h.serverError(c, err, "delete plant failed")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) UploadPlantPhoto(c *gin.Context) {
	plant, ok := h.ownPlant(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file required"})
		return
	}
	defer file.Close()

	photoURL, err := h.photos.Upload(c.Request.Context(), service.UploadPhotoInput{
		PlantID: plant.ID,
		File:    file,
		Header:  header,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPhotoTooLarge), errors.Is(err, service.ErrUnsupportedPhotoType):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.serverError(c, err, "photo upload failed")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"photoUrl": photoURL})
}

// ownPlant loads the :plantId plant and hides plants of other users behind a
// 404. The ownership middleware already guarantees :userId is the caller.
func (h HandlerSet) ownPlant(c *gin.Context) (models.Plant, bool) {
	plant, err := h.plants.GetByID(c.Request.Context(), c.Param("plantId"))
	if err != nil {
		if errors.Is(err, repository.ErrPlantNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "plant not found"})
			return models.Plant{}, false
		}
		h.serverError(c, err, "load plant failed")
		return models.Plant{}, false
	}

	if plant.UserID != c.Param("userId") {
		c.JSON(http.StatusNotFound, gin.H{"error": "plant not found"})
		return models.Plant{}, false
	}

	return plant, true
}
