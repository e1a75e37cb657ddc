package reviews

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/jillianguerra/home-depot/models"
	"github.com/jillianguerra/home-depot/mq"
	"github.com/jillianguerra/home-depot/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Handler struct {
	reviews *mongo.Collection
	items   *mongo.Collection
}

func NewHandler(reviews, items *mongo.Collection) *Handler {
	return &Handler{reviews: reviews, items: items}
}

// GetReviews lists reviews for an item, newest first, paginated.
// GET /api/reviews/item/:itemId
func (h *Handler) GetReviews(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	itemID := ps.ByName("itemId")
	skip, limit := utils.ParsePagination(r, 10, 100)

	filter := bson.M{"itemid": itemID}
	opts := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "date", Value: -1}})

	reviews, err := utils.FindAndDecode[models.Review](ctx, h.reviews, filter, opts)
	if err != nil {
		log.Println("GetReviews error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve reviews")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"reviews": reviews})
}

// GET /api/reviews/item/:itemId/:reviewId
func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var review models.Review
	err := h.reviews.FindOne(ctx, bson.M{"reviewid": ps.ByName("reviewId")}).Decode(&review)
	if err != nil {
		http.Error(w, "Review not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, review)
}

// AddReview creates the user's review for an item. One review per user per
// item. POST /api/reviews/item/:itemId
func (h *Handler) AddReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	itemID := ps.ByName("itemId")

	if err := h.items.FindOne(ctx, bson.M{"itemid": itemID}).Err(); err != nil {
		http.Error(w, "Item not found", http.StatusNotFound)
		return
	}

	count, err := h.reviews.CountDocuments(ctx, bson.M{"userid": userID, "itemid": itemID})
	if err != nil {
		log.Printf("Error checking for existing review: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if count > 0 {
		http.Error(w, "You have already reviewed this item", http.StatusConflict)
		return
	}

	var review models.Review
	if err := json.NewDecoder(r.Body).Decode(&review); err != nil || review.Rating < 1 || review.Rating > 5 || review.Comment == "" {
		http.Error(w, "Invalid review data", http.StatusBadRequest)
		return
	}

	review.ReviewID = utils.GenerateID(16)
	review.UserID = userID
	review.ItemID = itemID
	review.Date = time.Now()

	if _, err := h.reviews.InsertOne(ctx, review); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			http.Error(w, "You have already reviewed this item", http.StatusConflict)
			return
		}
		http.Error(w, "Failed to insert review", http.StatusInternalServerError)
		return
	}

	go mq.Emit(ctx, "review-added", mq.Index{
		EntityType: "review", EntityId: review.ReviewID, Method: "POST",
		ItemId: itemID, ItemType: "item",
	})

	utils.RespondWithJSON(w, http.StatusCreated, review)
}

// EditReview updates the caller's own review.
// PUT /api/reviews/item/:itemId/:reviewId
func (h *Handler) EditReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	reviewID := ps.ByName("reviewId")

	var review models.Review
	if err := h.reviews.FindOne(ctx, bson.M{"reviewid": reviewID}).Decode(&review); err != nil {
		http.Error(w, "Review not found", http.StatusNotFound)
		return
	}
	if review.UserID != userID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var body struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Rating < 1 || body.Rating > 5 || body.Comment == "" {
		http.Error(w, "Invalid update data", http.StatusBadRequest)
		return
	}

	_, err := h.reviews.UpdateOne(ctx,
		bson.M{"reviewid": reviewID},
		bson.M{"$set": bson.M{"rating": body.Rating, "comment": body.Comment, "date": time.Now()}},
	)
	if err != nil {
		http.Error(w, "Failed to update review", http.StatusInternalServerError)
		return
	}

	go mq.Emit(ctx, "review-edited", mq.Index{
		EntityType: "review", EntityId: reviewID, Method: "PUT",
		ItemId: review.ItemID, ItemType: "item",
	})

	w.WriteHeader(http.StatusOK)
}

// DeleteReview removes the caller's own review.
// DELETE /api/reviews/item/:itemId/:reviewId
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	reviewID := ps.ByName("reviewId")

	var review models.Review
	if err := h.reviews.FindOne(ctx, bson.M{"reviewid": reviewID}).Decode(&review); err != nil {
		http.Error(w, "Review not found", http.StatusNotFound)
		return
	}
	if review.UserID != userID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if _, err := h.reviews.DeleteOne(ctx, bson.M{"reviewid": reviewID}); err != nil {
		http.Error(w, "Failed to delete review", http.StatusInternalServerError)
		return
	}

	go mq.Emit(ctx, "review-deleted", mq.Index{
		EntityType: "review", EntityId: reviewID, Method: "DELETE",
		ItemId: review.ItemID, ItemType: "item",
	})

	w.WriteHeader(http.StatusOK)
}

// MeanRatings computes the average rating per item for a set of item ids.
// Items without reviews are absent from the result.
func MeanRatings(ctx context.Context, reviews *mongo.Collection, itemIDs []string) (map[string]float64, error) {
	if len(itemIDs) == 0 {
		return map[string]float64{}, nil
	}

	all, err := utils.FindAndDecode[models.Review](ctx, reviews, bson.M{"itemid": bson.M{"$in": itemIDs}})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return map[string]float64{}, nil
		}
		return nil, err
	}

	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, rv := range all {
		sums[rv.ItemID] += rv.Rating
		counts[rv.ItemID]++
	}

	means := make(map[string]float64, len(counts))
	for id, count := range counts {
		means[id] = float64(sums[id]) / float64(count)
	}
	return means, nil
}
