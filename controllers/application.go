package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"citizen-portal-api/config"
	"citizen-portal-api/models"
	"citizen-portal-api/monitor"
	"citizen-portal-api/services"
	"citizen-portal-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxDocumentSize = 10 * 1024 * 1024 // 10MB per file

var allowedDocumentExts = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// SubmitApplication accepts a citizen submission as multipart form data
// with optional document attachments. No authentication required.
func SubmitApplication(notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		fields := utils.SubmissionFields{
			Type:       utils.SanitizeInput(c.PostForm("type")),
			FirstName:  utils.SanitizeInput(c.PostForm("first_name")),
			LastName:   utils.SanitizeInput(c.PostForm("last_name")),
			Email:      utils.SanitizeInput(c.PostForm("email")),
			Phone:      utils.SanitizeInput(c.PostForm("phone")),
			Address:    utils.SanitizeInput(c.PostForm("address")),
			City:       utils.SanitizeInput(c.PostForm("city")),
			PostalCode: utils.SanitizeInput(c.PostForm("postal_code")),
			BirthDate:  utils.SanitizeInput(c.PostForm("birth_date")),
		}

		if errs := utils.ValidateSubmission(fields); len(errs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
			return
		}

		appType := models.ApplicationType(fields.Type)
		if !appType.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"type": "Unbekannter Antragstyp"}})
			return
		}

		urgent := c.PostForm("urgent_request") == "true" || c.PostForm("urgent_request") == "on"

		form, _ := c.MultipartForm()
		var files []*multipartFile
		if form != nil {
			for _, fh := range form.File["documents"] {
				if fh.Size > maxDocumentSize {
					c.JSON(http.StatusBadRequest, gin.H{"error": "File size exceeds 10MB limit"})
					return
				}
				ext := strings.ToLower(filepath.Ext(fh.Filename))
				if !allowedDocumentExts[ext] {
					c.JSON(http.StatusBadRequest, gin.H{"error": "File type not allowed"})
					return
				}
				files = append(files, &multipartFile{header: fh, ext: ext})
			}
		}

		now := time.Now()
		application := models.Application{
			ReferenceNumber: utils.GenerateReferenceNumber(),
			Type:            appType,
			Status:          models.StatusSubmitted,
			FirstName:       fields.FirstName,
			LastName:        fields.LastName,
			Email:           fields.Email,
			Phone:           fields.Phone,
			Address:         fields.Address,
			City:            fields.City,
			PostalCode:      fields.PostalCode,
			BirthDate:       fields.BirthDate,
			Notes:           utils.SanitizeInput(c.PostForm("notes")),
			UrgentRequest:   urgent,
			SubmittedAt:     &now,
		}

		uploadPath := os.Getenv("UPLOAD_PATH")
		if uploadPath == "" {
			uploadPath = "./uploads"
		}

		err := config.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&application).Error; err != nil {
				return err
			}
			for _, f := range files {
				stored := uuid.NewString() + f.ext
				if err := c.SaveUploadedFile(f.header, filepath.Join(uploadPath, stored)); err != nil {
					return err
				}
				doc := models.ApplicationDocument{
					ApplicationID:    application.ApplicationID,
					OriginalFilename: filepath.Base(f.header.Filename),
					StoredFilename:   stored,
					FileSize:         f.header.Size,
					MimeType:         f.header.Header.Get("Content-Type"),
					UploadedAt:       &now,
				}
				if err := tx.Create(&doc).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create application"})
			return
		}

		monitor.SubmissionsTotal.WithLabelValues(string(application.Type)).Inc()
		notifier.SubmissionReceived(&application)

		c.JSON(http.StatusCreated, gin.H{
			"application_id":   application.ApplicationID,
			"reference_number": application.ReferenceNumber,
			"message":          "Application submitted successfully",
		})
	}
}

type multipartFile struct {
	header *multipart.FileHeader
	ext    string
}

// GetApplicationByReference returns the full citizen view of one
// application. Lookup is case-insensitive and whitespace-trimmed.
func GetApplicationByReference(c *gin.Context) {
	ref := utils.NormalizeReference(c.Param("reference"))
	if !utils.ValidateReference(ref) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reference number format"})
		return
	}

	var application models.Application
	err := config.DB.Preload("Documents").
		Where("reference_number = ?", ref).
		First(&application).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch application"})
		return
	}

	view, err := buildStatusView(&application)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to derive application status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"application": application,
		"display":     view,
	})
}

// CheckStatus returns the compact status payload for the public status
// checker: status plus derived display facts, no applicant details.
func CheckStatus(c *gin.Context) {
	ref := utils.NormalizeReference(c.Param("reference"))
	if !utils.ValidateReference(ref) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reference number format"})
		return
	}

	var application models.Application
	err := config.DB.Where("reference_number = ?", ref).First(&application).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch application"})
		return
	}

	view, err := buildStatusView(&application)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to derive application status"})
		return
	}

	view["reference_number"] = application.ReferenceNumber
	view["type"] = application.Type
	view["type_label"] = utils.TypeLabel(application.Type)
	view["submitted_at"] = application.SubmittedAt

	c.JSON(http.StatusOK, view)
}

// buildStatusView derives the display facts for an application via the
// workflow engine. Progress is omitted when not applicable (rejected)
// instead of reporting zero.
func buildStatusView(app *models.Application) (gin.H, error) {
	timeline, err := services.BuildTimeline(app)
	if err != nil {
		return nil, err
	}

	view := gin.H{
		"status":       app.Status,
		"status_label": utils.StatusLabel(app.Status),
		"status_color": utils.StatusColor(app.Status),
		"timeline":     timeline,
	}

	if progress, err := services.Progress(app.Status); err == nil {
		view["progress"] = progress
	}

	if app.SubmittedAt != nil {
		if estimate, ok := services.EstimateCompletion(app.Status, *app.SubmittedAt, app.UrgentRequest); ok {
			view["estimated_completion"] = estimate
		}
	}

	if app.StaffNotes != "" {
		view["staff_notes"] = app.StaffNotes
	}

	return view, nil
}
