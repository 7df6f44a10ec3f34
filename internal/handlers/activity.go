package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MatthewBerasa/PEISS-APIs/internal/service"
)

// Snapshot uploads are bounded; cameras send single frames, not footage.
const maxImageBytes = 10 << 20

type activityLogResponse struct {
	LogID     string    `json:"logID"`
	DeviceID  string    `json:"deviceID"`
	ImageURL  *string   `json:"imageURL"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h HandlerSet) GetLogs(c *gin.Context) {
	deviceID := c.Query("deviceID")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deviceID must be specified"})
		return
	}

	entries, err := h.activity.List(c.Request.Context(), deviceID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	logs := make([]activityLogResponse, 0, len(entries))
	for _, entry := range entries {
		logs = append(logs, activityLogResponse{
			LogID:     entry.ID,
			DeviceID:  entry.DeviceID,
			ImageURL:  entry.ImageURL,
			CreatedAt: entry.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func (h HandlerSet) AddActivityLog(c *gin.Context) {
	deviceID := c.PostForm("deviceID")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deviceID must be specified"})
		return
	}

	var imageData []byte
	file, _, err := c.Request.FormFile("image")
	if err == nil {
		defer file.Close()
		imageData, err = io.ReadAll(io.LimitReader(file, maxImageBytes+1))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image upload"})
			return
		}
		if len(imageData) > maxImageBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Image upload too large"})
			return
		}
	}

	imageURL, err := h.activity.Append(c.Request.Context(), service.AppendInput{
		DeviceID: deviceID,
		Image:    imageData,
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp := gin.H{"message": "Activity log added successfully"}
	if imageURL != nil {
		resp["imageURL"] = *imageURL
	}
	c.JSON(http.StatusOK, resp)
}
