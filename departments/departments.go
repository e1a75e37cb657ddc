package departments

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
	departments *mongo.Collection
	categories  *mongo.Collection
}

func NewHandler(departments, categories *mongo.Collection) *Handler {
	return &Handler{departments: departments, categories: categories}
}

// GetDepartments lists all departments by name. GET /api/departments
func (h *Handler) GetDepartments(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	depts, err := utils.FindAndDecode[models.Department](ctx, h.departments,
		bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		log.Println("GetDepartments error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve departments")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"departments": depts})
}

// GetDepartment returns one department with its categories.
// GET /api/departments/:departmentId
func (h *Handler) GetDepartment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	deptID := ps.ByName("departmentId")

	var dept models.Department
	if err := h.departments.FindOne(ctx, bson.M{"departmentid": deptID}).Decode(&dept); err != nil {
		http.Error(w, "Department not found", http.StatusNotFound)
		return
	}

	cats, err := utils.FindAndDecode[models.Category](ctx, h.categories,
		bson.M{"departmentid": deptID},
		options.Find().SetSort(bson.D{{Key: "sortOrder", Value: 1}}))
	if err != nil {
		log.Println("GetDepartment categories error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve department")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"department": dept, "categories": cats})
}

// CreateDepartment adds a department. POST /api/departments
func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var dept models.Department
	if err := json.NewDecoder(r.Body).Decode(&dept); err != nil || dept.Name == "" {
		http.Error(w, "Invalid department data", http.StatusBadRequest)
		return
	}

	dept.DepartmentID = utils.GetUUID()

	if _, err := h.departments.InsertOne(ctx, dept); err != nil {
		log.Println("CreateDepartment error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create department")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dept)
}
