package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"citizen-portal-api/config"
	"citizen-portal-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetApplicationDocuments lists the documents attached to an
// application. Attachments are submission-time only, so this is a pure
// read surface.
func GetApplicationDocuments(c *gin.Context) {
	id := c.Param("id")

	var application models.Application
	if err := config.DB.Where("application_id = ?", id).First(&application).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch application"})
		return
	}

	var documents []models.ApplicationDocument
	if err := config.DB.Where("application_id = ?", application.ApplicationID).
		Find(&documents).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch documents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documents": documents,
		"total":     len(documents),
	})
}

// DownloadDocument streams a stored attachment to staff.
func DownloadDocument(c *gin.Context) {
	documentID := c.Param("document_id")

	var document models.ApplicationDocument
	if err := config.DB.Where("document_id = ?", documentID).First(&document).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch document"})
		return
	}

	uploadPath := os.Getenv("UPLOAD_PATH")
	if uploadPath == "" {
		uploadPath = "./uploads"
	}

	fullPath := filepath.Join(uploadPath, document.StoredFilename)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	// Set headers for download
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", document.OriginalFilename))
	c.Header("Content-Type", "application/octet-stream")

	c.File(fullPath)
}
