package controllers

import (
	"net/http"
	"time"

	"citizen-portal-api/config"
	"citizen-portal-api/models"
	"citizen-portal-api/utils"

	"github.com/gin-gonic/gin"
)

// GetDashboardStats returns the aggregate view for the staff dashboard:
// counts per status and type, open urgent requests, and the most recent
// submissions.
func GetDashboardStats(c *gin.Context) {
	stats, err := collectListStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	type typeCount struct {
		Type models.ApplicationType
		N    int64
	}
	var typeCounts []typeCount
	if err := config.DB.Model(&models.Application{}).
		Select("type, COUNT(*) as n").
		Group("type").
		Scan(&typeCounts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	byType := make([]gin.H, 0, len(typeCounts))
	for _, row := range typeCounts {
		byType = append(byType, gin.H{
			"type":  row.Type,
			"label": utils.TypeLabel(row.Type),
			"count": row.N,
		})
	}

	var recent []models.Application
	if err := config.DB.Order("submitted_at DESC").Limit(10).Find(&recent).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recent applications"})
		return
	}

	stats["by_type"] = byType
	stats["current_date"] = time.Now().Format("2006-01-02")

	c.JSON(http.StatusOK, gin.H{
		"stats":  stats,
		"recent": recent,
	})
}
