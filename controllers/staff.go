package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"citizen-portal-api/config"
	"citizen-portal-api/models"
	"citizen-portal-api/monitor"
	"citizen-portal-api/services"
	"citizen-portal-api/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Columns the staff list may sort by. Anything else falls back to
// submission time.
var sortColumns = map[string]string{
	"submitted_at": "submitted_at",
	"updated_at":   "updated_at",
	"type":         "type",
	"status":       "status",
}

// GetApplications returns the staff list with filters, search, sorting
// and a stats block for the dashboard header.
func GetApplications(c *gin.Context) {
	query := config.DB.Model(&models.Application{})

	if status := c.Query("status"); status != "" {
		if !models.Status(status).IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status filter"})
			return
		}
		query = query.Where("status = ?", status)
	}

	if appType := c.Query("type"); appType != "" {
		if !models.ApplicationType(appType).IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown type filter"})
			return
		}
		query = query.Where("type = ?", appType)
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"reference_number LIKE ? OR first_name LIKE ? OR last_name LIKE ? OR email LIKE ?",
			strings.ToUpper(pattern), pattern, pattern, pattern,
		)
	}

	column, ok := sortColumns[c.DefaultQuery("sort_by", "submitted_at")]
	if !ok {
		column = "submitted_at"
	}
	direction := "DESC"
	if c.DefaultQuery("sort_order", "desc") == "asc" {
		direction = "ASC"
	}

	var applications []models.Application
	if err := query.Order(column + " " + direction).Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}

	stats, err := collectListStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": applications,
		"total":        len(applications),
		"stats":        stats,
	})
}

func collectListStats() (gin.H, error) {
	type count struct {
		Status models.Status
		N      int64
	}

	var counts []count
	if err := config.DB.Model(&models.Application{}).
		Select("status, COUNT(*) as n").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, err
	}

	var total, urgent int64
	byStatus := make(map[models.Status]int64)
	for _, row := range counts {
		byStatus[row.Status] = row.N
		total += row.N
	}

	if err := config.DB.Model(&models.Application{}).
		Where("urgent_request = ? AND status NOT IN ?", true,
			[]models.Status{models.StatusCompleted, models.StatusRejected}).
		Count(&urgent).Error; err != nil {
		return nil, err
	}

	return gin.H{
		"total":     total,
		"submitted": byStatus[models.StatusSubmitted],
		"in_review": byStatus[models.StatusInReview],
		"approved":  byStatus[models.StatusApproved],
		"rejected":  byStatus[models.StatusRejected],
		"completed": byStatus[models.StatusCompleted],
		"urgent":    urgent,
	}, nil
}

// GetApplication returns one application with documents, history and
// comments, plus the workflow facts the staff UI needs: whether the
// status may still change and which advance is next.
func GetApplication(c *gin.Context) {
	id := c.Param("id")

	var application models.Application
	err := config.DB.Preload("Documents").
		Preload("StatusUpdates").
		Preload("Comments").Preload("Comments.User").
		Where("application_id = ?", id).
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

	response := gin.H{
		"application": application,
		"display":     view,
		"can_mutate":  services.CanMutateStatus(application.Status),
	}
	if next, ok := services.NextStatus(application.Status); ok {
		response["next_status"] = next
		response["next_status_label"] = utils.StatusLabel(next)
	}

	c.JSON(http.StatusOK, response)
}

type UpdateStatusRequest struct {
	Status models.Status `json:"status" binding:"required"`
	Notes  string        `json:"notes"`
}

// UpdateApplicationStatus applies a staff status transition. Workflow
// rules are checked before anything is written: terminal applications
// and illegal transitions never reach the database.
func UpdateApplicationStatus(notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		userID, _ := c.Get("userID")

		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var application models.Application
		if err := config.DB.Where("application_id = ?", id).First(&application).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch application"})
			return
		}

		notesChanged := req.Notes != "" && req.Notes != application.StaffNotes
		statusChanged := req.Status != application.Status

		if !statusChanged && !notesChanged {
			c.JSON(http.StatusOK, gin.H{"message": "No changes", "application": application})
			return
		}

		if statusChanged {
			if !services.CanMutateStatus(application.Status) {
				c.JSON(http.StatusConflict, gin.H{"error": "Application is in a terminal state"})
				return
			}
			if err := services.ValidateTransition(application.Status, req.Status); err != nil {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
		}

		oldStatus := application.Status
		now := time.Now()

		err := config.DB.Transaction(func(tx *gorm.DB) error {
			updates := map[string]interface{}{"updated_at": now}
			if statusChanged {
				updates["status"] = req.Status
			}
			if notesChanged {
				updates["staff_notes"] = req.Notes
			}
			if err := tx.Model(&application).Updates(updates).Error; err != nil {
				return err
			}

			if statusChanged {
				history := models.StatusUpdate{
					ApplicationID: application.ApplicationID,
					OldStatus:     &oldStatus,
					NewStatus:     req.Status,
					Notes:         req.Notes,
					ChangedBy:     userID.(int),
					CreatedAt:     now,
				}
				if err := tx.Create(&history).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update application"})
			return
		}

		application.Status = req.Status
		if notesChanged {
			application.StaffNotes = req.Notes
		}
		application.UpdatedAt = &now

		if statusChanged {
			monitor.StatusTransitionsTotal.WithLabelValues(string(oldStatus), string(req.Status)).Inc()
			notifier.StatusChanged(&application, oldStatus)
		}

		c.JSON(http.StatusOK, gin.H{
			"message":     "Application updated",
			"application": application,
		})
	}
}

type AddCommentRequest struct {
	Comment string `json:"comment" binding:"required"`
}

// AddComment appends a staff comment. Comments count as staff mutations
// and bump updated_at.
func AddComment(c *gin.Context) {
	id := c.Param("id")
	userID, _ := c.Get("userID")

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var application models.Application
	if err := config.DB.Where("application_id = ?", id).First(&application).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch application"})
		return
	}

	now := time.Now()
	comment := models.Comment{
		ApplicationID: application.ApplicationID,
		UserID:        userID.(int),
		Text:          strings.TrimSpace(req.Comment),
		CreatedAt:     now,
	}
	if comment.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment must not be empty"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&application).Update("updated_at", now).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add comment"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}
