package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"meera-system/internal/database/models"
)

// MasterKind is the closed set of master-data tables. Anything else in
// the URL is a client error, never a table name.
type MasterKind int32

const (
	MasterCategories MasterKind = iota + 1
	MasterColors
	MasterFabrics
)

func ParseMasterKind(s string) (MasterKind, bool) {
	switch s {
	case "categories":
		return MasterCategories, true
	case "colors":
		return MasterColors, true
	case "fabrics":
		return MasterFabrics, true
	default:
		return 0, false
	}
}

type masterEntry struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

type MastersHandler struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewMastersHandler(db *gorm.DB, log *zap.Logger) *MastersHandler {
	return &MastersHandler{db: db, log: log}
}

func (h *MastersHandler) List(c *gin.Context) {
	kind, ok := ParseMasterKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid type"})
		return
	}

	entries, err := h.list(c, kind)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load masters"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *MastersHandler) Create(c *gin.Context) {
	kind, ok := ParseMasterKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid type"})
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name required"})
		return
	}

	if err := h.create(c, kind, strings.TrimSpace(req.Name)); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Already exists"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *MastersHandler) Delete(c *gin.Context) {
	kind, ok := ParseMasterKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid type"})
		return
	}

	if err := h.delete(c, kind, c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Typed accessors per kind; the switch is the whole dispatch surface.

func (h *MastersHandler) list(c *gin.Context, kind MasterKind) ([]masterEntry, error) {
	db := h.db.WithContext(c.Request.Context())
	entries := []masterEntry{}

	switch kind {
	case MasterCategories:
		var rows []models.Category
		if err := db.Order("name").Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			entries = append(entries, masterEntry{ID: r.ID, Name: r.Name})
		}
	case MasterColors:
		var rows []models.Color
		if err := db.Order("name").Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			entries = append(entries, masterEntry{ID: r.ID, Name: r.Name})
		}
	case MasterFabrics:
		var rows []models.Fabric
		if err := db.Order("name").Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			entries = append(entries, masterEntry{ID: r.ID, Name: r.Name})
		}
	}
	return entries, nil
}

func (h *MastersHandler) create(c *gin.Context, kind MasterKind, name string) error {
	db := h.db.WithContext(c.Request.Context())

	switch kind {
	case MasterCategories:
		return db.Create(&models.Category{Name: name}).Error
	case MasterColors:
		return db.Create(&models.Color{Name: name}).Error
	default:
		return db.Create(&models.Fabric{Name: name}).Error
	}
}

func (h *MastersHandler) delete(c *gin.Context, kind MasterKind, id string) error {
	db := h.db.WithContext(c.Request.Context())

	switch kind {
	case MasterCategories:
		return db.Delete(&models.Category{}, "id = ?", id).Error
	case MasterColors:
		return db.Delete(&models.Color{}, "id = ?", id).Error
	default:
		return db.Delete(&models.Fabric{}, "id = ?", id).Error
	}
}
