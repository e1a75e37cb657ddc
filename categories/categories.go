package categories

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/jillianguerra/home-depot/models"
	"github.com/jillianguerra/home-depot/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Handler struct {
	categories  *mongo.Collection
	departments *mongo.Collection
}

func NewHandler(categories, departments *mongo.Collection) *Handler {
	return &Handler{categories: categories, departments: departments}
}

type categoryView struct {
	models.Category
	Department *models.Department `json:"department,omitempty"`
}

// GetCategories lists all categories in display order. GET /api/categories
func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cats, err := utils.FindAndDecode[models.Category](ctx, h.categories,
		bson.M{}, options.Find().SetSort(bson.D{{Key: "sortOrder", Value: 1}}))
	if err != nil {
		log.Println("GetCategories error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve categories")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"categories": cats})
}

// GetCategory returns one category with its department resolved.
// GET /api/categories/:categoryId
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var cat models.Category
	if err := h.categories.FindOne(ctx, bson.M{"categoryid": ps.ByName("categoryId")}).Decode(&cat); err != nil {
		http.Error(w, "Category not found", http.StatusNotFound)
		return
	}

	view := categoryView{Category: cat}
	if cat.DepartmentID != "" {
		var dept models.Department
		if err := h.departments.FindOne(ctx, bson.M{"departmentid": cat.DepartmentID}).Decode(&dept); err == nil {
			view.Department = &dept
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, view)
}

// CreateCategory adds a category. POST /api/categories
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var cat models.Category
	if err := json.NewDecoder(r.Body).Decode(&cat); err != nil || cat.Name == "" {
		http.Error(w, "Invalid category data", http.StatusBadRequest)
		return
	}
	if cat.DepartmentID != "" {
		if err := h.departments.FindOne(ctx, bson.M{"departmentid": cat.DepartmentID}).Err(); err != nil {
			http.Error(w, "Department not found", http.StatusBadRequest)
			return
		}
	}

	cat.CategoryID = utils.GetUUID()

	if _, err := h.categories.InsertOne(ctx, cat); err != nil {
		log.Println("CreateCategory error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create category")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, cat)
}

// DeleteCategory removes a category. DELETE /api/categories/:categoryId
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.categories.DeleteOne(ctx, bson.M{"categoryid": ps.ByName("categoryId")})
	if err != nil {
		log.Println("DeleteCategory error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete category")
		return
	}
	if res.DeletedCount == 0 {
		http.Error(w, "Category not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
}
