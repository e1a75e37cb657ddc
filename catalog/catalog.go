package catalog

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/jillianguerra/home-depot/models"
	"github.com/jillianguerra/home-depot/mq"
	"github.com/jillianguerra/home-depot/rdx"
	"github.com/jillianguerra/home-depot/reviews"
	"github.com/jillianguerra/home-depot/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const featuredCacheKey = "cache:featured-items"
const featuredCacheTTL = 5 * time.Minute

type Handler struct {
	items       *mongo.Collection
	categories  *mongo.Collection
	departments *mongo.Collection
	reviews     *mongo.Collection
}

func NewHandler(items, categories, departments, reviewsCol *mongo.Collection) *Handler {
	return &Handler{items: items, categories: categories, departments: departments, reviews: reviewsCol}
}

// itemView decorates an item with read-time extras the storefront wants:
// the resolved category and, where reviews exist, the mean rating.
type itemView struct {
	models.Item
	Category *categoryView `json:"category,omitempty"`
	Rating   float64       `json:"rating,omitempty"`
}

type categoryView struct {
	models.Category
	Department *models.Department `json:"department,omitempty"`
}

// GetItems lists the catalog sorted by name, category attached, paginated.
// GET /api/items
func (h *Handler) GetItems(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	skip, limit := utils.ParsePagination(r, 20, 100)
	opts := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "name", Value: 1}})

	items, err := utils.FindAndDecode[models.Item](ctx, h.items, bson.M{}, opts)
	if err != nil {
		log.Println("GetItems error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve items")
		return
	}

	views, err := h.attach(ctx, items, false)
	if err != nil {
		log.Println("GetItems attach error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve items")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"items": views})
}

// GetFeaturedItems serves the featured strip, cached in Redis for a few
// minutes. GET /api/items/featured
func (h *Handler) GetFeaturedItems(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if cached, err := rdx.RdxGet(ctx, featuredCacheKey); err == nil && cached != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(cached))
		return
	}

	items, err := utils.FindAndDecode[models.Item](ctx, h.items,
		bson.M{"featured": true},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		log.Println("GetFeaturedItems error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve featured items")
		return
	}

	views, err := h.attach(ctx, items, false)
	if err != nil {
		log.Println("GetFeaturedItems attach error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve featured items")
		return
	}

	payload, err := json.Marshal(utils.M{"items": views})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to encode featured items")
		return
	}
	if err := rdx.RdxSet(ctx, featuredCacheKey, string(payload), featuredCacheTTL); err != nil && err != rdx.ErrNotConnected {
		log.Println("featured cache write failed:", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

// GetItemsByCategory lists a category's items with mean ratings attached.
// GET /api/items/category/:categoryId
func (h *Handler) GetItemsByCategory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	categoryID := ps.ByName("categoryId")
	if err := h.categories.FindOne(ctx, bson.M{"categoryid": categoryID}).Err(); err != nil {
		http.Error(w, "Category not found", http.StatusNotFound)
		return
	}

	items, err := utils.FindAndDecode[models.Item](ctx, h.items,
		bson.M{"categoryid": categoryID},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		log.Println("GetItemsByCategory error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve items")
		return
	}

	views, err := h.attach(ctx, items, true)
	if err != nil {
		log.Println("GetItemsByCategory attach error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve items")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"items": views})
}

// SearchItems matches normalized search terms against the query.
// GET /api/items/search/:term
func (h *Handler) SearchItems(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	terms := utils.SplitTags(strings.ReplaceAll(ps.ByName("term"), " ", ","))
	if len(terms) == 0 {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"items": []itemView{}})
		return
	}

	items, err := utils.FindAndDecode[models.Item](ctx, h.items,
		bson.M{"searchterms": bson.M{"$in": terms}},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}).SetLimit(50))
	if err != nil {
		log.Println("SearchItems error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	views, err := h.attach(ctx, items, false)
	if err != nil {
		log.Println("SearchItems attach error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"items": views})
}

// GetItem returns one item with its category and department resolved.
// GET /api/items/item/:id
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var item models.Item
	if err := h.items.FindOne(ctx, bson.M{"itemid": ps.ByName("id")}).Decode(&item); err != nil {
		http.Error(w, "Item not found", http.StatusNotFound)
		return
	}

	views, err := h.attach(ctx, []models.Item{item}, true)
	if err != nil {
		log.Println("GetItem attach error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve item")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, views[0])
}

// CreateItem adds a catalog item. POST /api/items
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var item models.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil || item.Name == "" || item.Price < 0 {
		http.Error(w, "Invalid item data", http.StatusBadRequest)
		return
	}
	for i := range item.SubItems {
		if item.SubItems[i].Price <= 0 {
			http.Error(w, "Variant price is required", http.StatusBadRequest)
			return
		}
		if item.SubItems[i].SubItemID == "" {
			item.SubItems[i].SubItemID = utils.GetUUID()
		}
	}
	if item.CategoryID != "" {
		if err := h.categories.FindOne(ctx, bson.M{"categoryid": item.CategoryID}).Err(); err != nil {
			http.Error(w, "Category not found", http.StatusBadRequest)
			return
		}
	}

	item.ItemID = utils.GetUUID()
	item.SearchTerms = searchTerms(item)
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt

	if _, err := h.items.InsertOne(ctx, item); err != nil {
		log.Println("CreateItem error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create item")
		return
	}

	invalidateFeaturedCache(ctx)
	go mq.Emit(ctx, "item-created", mq.Index{EntityType: "item", EntityId: item.ItemID, Method: "POST"})

	utils.RespondWithJSON(w, http.StatusCreated, item)
}

// UpdateItem overwrites an item's editable fields. PUT /api/items/item/:id
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	itemID := ps.ByName("id")

	var item models.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil || item.Name == "" || item.Price < 0 {
		http.Error(w, "Invalid item data", http.StatusBadRequest)
		return
	}
	for i := range item.SubItems {
		if item.SubItems[i].Price <= 0 {
			http.Error(w, "Variant price is required", http.StatusBadRequest)
			return
		}
		if item.SubItems[i].SubItemID == "" {
			item.SubItems[i].SubItemID = utils.GetUUID()
		}
	}

	update := bson.M{"$set": bson.M{
		"name":        item.Name,
		"description": item.Description,
		"categoryid":  item.CategoryID,
		"price":       item.Price,
		"subitems":    item.SubItems,
		"featured":    item.Featured,
		"searchterms": searchTerms(item),
		"updatedAt":   time.Now(),
	}}

	res, err := h.items.UpdateOne(ctx, bson.M{"itemid": itemID}, update)
	if err != nil {
		log.Println("UpdateItem error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update item")
		return
	}
	if res.MatchedCount == 0 {
		http.Error(w, "Item not found", http.StatusNotFound)
		return
	}

	invalidateFeaturedCache(ctx)
	go mq.Emit(ctx, "item-updated", mq.Index{EntityType: "item", EntityId: itemID, Method: "PUT"})

	w.WriteHeader(http.StatusOK)
}

// DeleteItem removes an item and its reviews. DELETE /api/items/item/:id
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	itemID := ps.ByName("id")

	res, err := h.items.DeleteOne(ctx, bson.M{"itemid": itemID})
	if err != nil {
		log.Println("DeleteItem error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete item")
		return
	}
	if res.DeletedCount == 0 {
		http.Error(w, "Item not found", http.StatusNotFound)
		return
	}

	if _, err := h.reviews.DeleteMany(ctx, bson.M{"itemid": itemID}); err != nil {
		log.Println("DeleteItem reviews cleanup error:", err)
	}

	invalidateFeaturedCache(ctx)
	go mq.Emit(ctx, "item-deleted", mq.Index{EntityType: "item", EntityId: itemID, Method: "DELETE"})

	w.WriteHeader(http.StatusOK)
}

// UploadItemImage stores an item image and its thumbnail.
// POST /api/items/item/:id/image
func (h *Handler) UploadItemImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	itemID := ps.ByName("id")
	if err := h.items.FindOne(ctx, bson.M{"itemid": itemID}).Err(); err != nil {
		http.Error(w, "Item not found", http.StatusNotFound)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "Image file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !utils.SupportedImageTypes[header.Header.Get("Content-Type")] {
		http.Error(w, "Unsupported image type", http.StatusBadRequest)
		return
	}

	fileName, err := utils.SaveImageWithThumb(file, "./static/itempic", itemID)
	if err != nil {
		log.Println("UploadItemImage error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save image")
		return
	}

	if _, err := h.items.UpdateOne(ctx, bson.M{"itemid": itemID},
		bson.M{"$set": bson.M{"image": fileName, "updatedAt": time.Now()}}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update item")
		return
	}

	invalidateFeaturedCache(ctx)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"image": fileName})
}

// attach resolves category (and department) references and, when withRatings
// is set, joins in each item's mean review rating.
func (h *Handler) attach(ctx context.Context, items []models.Item, withRatings bool) ([]itemView, error) {
	views := make([]itemView, 0, len(items))
	if len(items) == 0 {
		return views, nil
	}

	catIDs := make([]string, 0, len(items))
	itemIDs := make([]string, 0, len(items))
	for _, it := range items {
		itemIDs = append(itemIDs, it.ItemID)
		if it.CategoryID != "" {
			catIDs = append(catIDs, it.CategoryID)
		}
	}

	cats := make(map[string]categoryView)
	if len(catIDs) > 0 {
		found, err := utils.FindAndDecode[models.Category](ctx, h.categories, bson.M{"categoryid": bson.M{"$in": catIDs}})
		if err != nil {
			return nil, err
		}

		deptIDs := make([]string, 0, len(found))
		for _, c := range found {
			if c.DepartmentID != "" {
				deptIDs = append(deptIDs, c.DepartmentID)
			}
		}
		depts := make(map[string]models.Department)
		if len(deptIDs) > 0 {
			foundDepts, err := utils.FindAndDecode[models.Department](ctx, h.departments, bson.M{"departmentid": bson.M{"$in": deptIDs}})
			if err != nil {
				return nil, err
			}
			for _, d := range foundDepts {
				depts[d.DepartmentID] = d
			}
		}

		for _, c := range found {
			cv := categoryView{Category: c}
			if d, ok := depts[c.DepartmentID]; ok {
				dCopy := d
				cv.Department = &dCopy
			}
			cats[c.CategoryID] = cv
		}
	}

	var ratings map[string]float64
	if withRatings {
		var err error
		ratings, err = reviews.MeanRatings(ctx, h.reviews, itemIDs)
		if err != nil {
			return nil, err
		}
	}

	for _, it := range items {
		view := itemView{Item: it}
		if cv, ok := cats[it.CategoryID]; ok {
			cvCopy := cv
			view.Category = &cvCopy
		}
		if withRatings {
			view.Rating = ratings[it.ItemID]
		}
		views = append(views, view)
	}
	return views, nil
}

// searchTerms derives the normalized term list from an item's name and
// description.
func searchTerms(item models.Item) []string {
	raw := strings.ReplaceAll(item.Name+" "+item.Description, " ", ",")
	return utils.SplitTags(raw)
}

func invalidateFeaturedCache(ctx context.Context) {
	if err := rdx.RdxDel(ctx, featuredCacheKey); err != nil && err != rdx.ErrNotConnected {
		log.Println("featured cache invalidation failed:", err)
	}
}
