package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Zaki007-butt/Rentify-backend/internal/httputil"
	"github.com/Zaki007-butt/Rentify-backend/internal/logger"
	"github.com/Zaki007-butt/Rentify-backend/internal/models"
	"github.com/Zaki007-butt/Rentify-backend/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var minPrice = decimal.RequireFromString("0.01")

type CategoryRequest struct {
	Name string `json:"name"`
}

func ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	var categories []models.PropertyCategory
	if err := store.DB.Order("name ASC").Find(&categories).Error; err != nil {
		logger.Log.Error("failed to fetch categories", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to fetch categories")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, categories)
}

func CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		httputil.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	category := models.PropertyCategory{Name: req.Name}
	if err := store.DB.Create(&category).Error; err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "category already exists")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, category)
}

func UpdateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		httputil.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	var category models.PropertyCategory
	if err := store.DB.First(&category, id).Error; err != nil {
		httputil.WriteError(w, http.StatusNotFound, "category not found")
		return
	}

	if err := store.DB.Model(&category).Update("name", req.Name).Error; err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "category already exists")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, category)
}

// DeleteCategoryHandler removes a category and its types. Properties that
// referenced them are kept and unlinked, their columns are nullable.
func DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	err = store.DB.Transaction(func(tx *gorm.DB) error {
		var typeIDs []uint
		if err := tx.Model(&models.PropertyType{}).Where("category_id = ?", id).Pluck("id", &typeIDs).Error; err != nil {
			return err
		}
		if len(typeIDs) > 0 {
			if err := tx.Model(&models.Property{}).Where("type_id IN ?", typeIDs).Update("type_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Where("category_id = ?", id).Delete(&models.PropertyType{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&models.Property{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.PropertyCategory{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "category not found")
		return
	}
	if err != nil {
		logger.Log.Error("failed to delete category", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type TypeRequest struct {
	Name       string `json:"name"`
	CategoryID uint   `json:"category_id"`
}

func ListTypesHandler(w http.ResponseWriter, r *http.Request) {
	q := store.DB.Preload("Category").Order("name ASC")
	if categoryID, ok := queryID(r, "category_id"); ok {
		q = q.Where("category_id = ?", categoryID)
	}

	var types []models.PropertyType
	if err := q.Find(&types).Error; err != nil {
		logger.Log.Error("failed to fetch types", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to fetch types")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, types)
}

func CreateTypeHandler(w http.ResponseWriter, r *http.Request) {
	var req TypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		httputil.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	var category models.PropertyCategory
	if err := store.DB.First(&category, req.CategoryID).Error; err != nil {
		httputil.WriteError(w, http.StatusNotFound, "category not found")
		return
	}

	propertyType := models.PropertyType{Name: req.Name, CategoryID: category.ID}
	if err := store.DB.Create(&propertyType).Error; err != nil {
		logger.Log.Error("failed to create type", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to create type")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, propertyType)
}

func UpdateTypeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid type id")
		return
	}

	var req TypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var propertyType models.PropertyType
	if err := store.DB.First(&propertyType, id).Error; err != nil {
		httputil.WriteError(w, http.StatusNotFound, "type not found")
		return
	}

	updates := map[string]any{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.CategoryID != 0 {
		var category models.PropertyCategory
		if err := store.DB.First(&category, req.CategoryID).Error; err != nil {
			httputil.WriteError(w, http.StatusNotFound, "category not found")
			return
		}
		updates["category_id"] = category.ID
	}

	if len(updates) > 0 {
		if err := store.DB.Model(&propertyType).Updates(updates).Error; err != nil {
			logger.Log.Error("failed to update type", zap.Error(err))
			httputil.WriteError(w, http.StatusInternalServerError, "failed to update type")
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, propertyType)
}

// DeleteTypeHandler removes a type and unlinks the properties that carried it.
func DeleteTypeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid type id")
		return
	}

	err = store.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Property{}).Where("type_id = ?", id).Update("type_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.PropertyType{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "type not found")
		return
	}
	if err != nil {
		logger.Log.Error("failed to delete type", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to delete type")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type PropertyRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Address     string          `json:"address"`
	City        string          `json:"city"`
	Status      string          `json:"status"`
	Bedroom     int             `json:"bedroom"`
	Washroom    int             `json:"washroom"`
	Area        string          `json:"area"`
	CategoryID  *uint           `json:"category_id"`
	TypeID      *uint           `json:"type_id"`
}

func (req *PropertyRequest) validate() string {
	switch {
	case req.Title == "" || len(req.Title) > 200:
		return "title is required and must be at most 200 characters"
	case req.Description == "":
		return "description is required"
	case req.Address == "":
		return "address is required"
	case req.Price.LessThan(minPrice):
		return "price must be at least 0.01"
	}
	if req.Status != "" && req.Status != models.PropertyStatusAvailable &&
		req.Status != models.PropertyStatusRented && req.Status != models.PropertyStatusSold {
		return "status must be available, rented or sold"
	}
	return ""
}

func ListPropertiesHandler(w http.ResponseWriter, r *http.Request) {
	q := store.DB.Preload("Category").Preload("Type").Order("created_at DESC").Order("id DESC")
	if categoryID, ok := queryID(r, "category_id"); ok {
		q = q.Where("category_id = ?", categoryID)
	}
	if typeID, ok := queryID(r, "type_id"); ok {
		q = q.Where("type_id = ?", typeID)
	}

	var properties []models.Property
	if err := q.Find(&properties).Error; err != nil {
		logger.Log.Error("failed to fetch properties", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to fetch properties")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, properties)
}

func GetPropertyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid property id")
		return
	}

	var property models.Property
	if err := store.DB.Preload("Category").Preload("Type").First(&property, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httputil.WriteError(w, http.StatusNotFound, "property not found")
			return
		}
		logger.Log.Error("failed to fetch property", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to fetch property")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, property)
}

func CreatePropertyHandler(w http.ResponseWriter, r *http.Request) {
	var req PropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		httputil.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	status := req.Status
	if status == "" {
		status = models.PropertyStatusAvailable
	}

	property := models.Property{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Address:     req.Address,
		City:        req.City,
		Status:      status,
		Bedroom:     req.Bedroom,
		Washroom:    req.Washroom,
		Area:        req.Area,
		CategoryID:  req.CategoryID,
		TypeID:      req.TypeID,
	}
	if err := store.DB.Create(&property).Error; err != nil {
		logger.Log.Error("failed to create property", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to create property")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, property)
}

func UpdatePropertyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid property id")
		return
	}

	var property models.Property
	if err := store.DB.First(&property, id).Error; err != nil {
		httputil.WriteError(w, http.StatusNotFound, "property not found")
		return
	}

	var req PropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		httputil.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	property.Title = req.Title
	property.Description = req.Description
	property.Price = req.Price
	property.Address = req.Address
	property.City = req.City
	if req.Status != "" {
		property.Status = req.Status
	}
	property.Bedroom = req.Bedroom
	property.Washroom = req.Washroom
	property.Area = req.Area
	property.CategoryID = req.CategoryID
	property.TypeID = req.TypeID

	if err := store.DB.Save(&property).Error; err != nil {
		logger.Log.Error("failed to update property", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to update property")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, property)
}

// DeletePropertyHandler removes a property and cascades through its
// agreements to their payments and utility bills.
func DeletePropertyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid property id")
		return
	}

	err = store.DB.Transaction(func(tx *gorm.DB) error {
		var agreementIDs []uint
		if err := tx.Model(&models.Agreement{}).Where("property_id = ?", id).Pluck("id", &agreementIDs).Error; err != nil {
			return err
		}
		if err := deleteAgreementChildren(tx, agreementIDs); err != nil {
			return err
		}
		if len(agreementIDs) > 0 {
			if err := tx.Where("property_id = ?", id).Delete(&models.Agreement{}).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.Property{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "property not found")
		return
	}
	if err != nil {
		logger.Log.Error("failed to delete property", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to delete property")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
