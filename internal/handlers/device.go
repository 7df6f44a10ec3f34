package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MatthewBerasa/PEISS-APIs/internal/service"
)

func (h HandlerSet) ProvideSettings(c *gin.Context) {
	deviceID := c.Query("deviceID")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deviceID must be specified"})
		return
	}

	settings, err := h.devices.GetSettings(c.Request.Context(), deviceID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"alarmSetting":        settings.AlarmEnabled,
		"notificationSetting": settings.NotificationsEnabled,
	})
}

// Settings and alarm-state bodies use *bool so that only strict JSON booleans
// bind; "yes" or 1 is a 400, not a truthy coercion.
type updateSettingsRequest struct {
	DeviceID            string `json:"deviceID"`
	AlarmSetting        *bool  `json:"alarmSetting"`
	NotificationSetting *bool  `json:"notificationSetting"`
}

func (h HandlerSet) UpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DeviceID == "" || req.AlarmSetting == nil || req.NotificationSetting == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deviceID, alarmSetting and notificationSetting must be specified"})
		return
	}

	err := h.devices.UpdateSettings(c.Request.Context(), req.DeviceID, service.DeviceSettings{
		AlarmEnabled:         *req.AlarmSetting,
		NotificationsEnabled: *req.NotificationSetting,
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Settings updated successfully"})
}

func (h HandlerSet) ConnectSystem(c *gin.Context) {
	deviceID := c.Query("deviceID")
	userID := c.Query("userID")
	if deviceID == "" || userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Both deviceID and userID must be specified"})
		return
	}

	if err := h.sessions.ConnectDevice(c.Request.Context(), deviceID, userID); err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User connected to System successfully"})
}

func (h HandlerSet) DisconnectSystem(c *gin.Context) {
	deviceID := c.Query("deviceID")
	userID := c.Query("userID")
	if deviceID == "" || userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Both deviceID and userID must be specified"})
		return
	}

	if err := h.sessions.DisconnectDevice(c.Request.Context(), deviceID, userID); err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User disconnected from System successfully"})
}

type checkConnectionRequest struct {
	UserID string `json:"userID"`
}

func (h HandlerSet) CheckConnection(c *gin.Context) {
	var req checkConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userID must be specified"})
		return
	}

	connected, err := h.sessions.CheckConnection(c.Request.Context(), req.UserID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"connectionStatus": connected})
}

func (h HandlerSet) GetAlarmState(c *gin.Context) {
	deviceID := c.Query("deviceID")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deviceID must be specified"})
		return
	}

	state, err := h.devices.GetAlarmState(c.Request.Context(), deviceID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"alarmState": gin.H{
			"alarmSounding": state.AlarmSounding,
			"alarmEnabled":  state.AlarmEnabled,
		},
	})
}

type updateAlarmStateRequest struct {
	DeviceID   string `json:"deviceID"`
	AlarmState *bool  `json:"alarmState"`
}

func (h HandlerSet) UpdateAlarmState(c *gin.Context) {
	var req updateAlarmStateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DeviceID == "" || req.AlarmState == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deviceID and a boolean alarmState must be specified"})
		return
	}

	if err := h.devices.SetAlarmState(c.Request.Context(), req.DeviceID, *req.AlarmState); err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Alarm state updated successfully"})
}
