package wishlist

import (
	"context"
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
	wishlist *mongo.Collection
	items    *mongo.Collection
}

func NewHandler(wishlist, items *mongo.Collection) *Handler {
	return &Handler{wishlist: wishlist, items: items}
}

// GetWishlist returns the caller's saved items, newest first, with the item
// documents resolved. GET /api/wishlist
func (h *Handler) GetWishlist(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	entries, err := utils.FindAndDecode[models.WishlistEntry](ctx, h.wishlist,
		bson.M{"userid": userID},
		options.Find().SetSort(bson.D{{Key: "addedAt", Value: -1}}))
	if err != nil {
		log.Println("GetWishlist error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve wishlist")
		return
	}

	itemIDs := make([]string, 0, len(entries))
	for _, e := range entries {
		itemIDs = append(itemIDs, e.ItemID)
	}

	byID := make(map[string]models.Item, len(itemIDs))
	if len(itemIDs) > 0 {
		found, err := utils.FindAndDecode[models.Item](ctx, h.items, bson.M{"itemid": bson.M{"$in": itemIDs}})
		if err != nil {
			log.Println("GetWishlist items error:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve wishlist")
			return
		}
		for _, it := range found {
			byID[it.ItemID] = it
		}
	}

	// Entries whose item has since been deleted are dropped from the view.
	items := make([]models.Item, 0, len(entries))
	for _, e := range entries {
		if it, ok := byID[e.ItemID]; ok {
			items = append(items, it)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"items": items})
}

// AddToWishlist saves an item for the caller. Idempotent.
// POST /api/wishlist/:itemId
func (h *Handler) AddToWishlist(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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

	_, err := h.wishlist.UpdateOne(ctx,
		bson.M{"userid": userID, "itemid": itemID},
		bson.M{"$setOnInsert": bson.M{"addedAt": time.Now()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		log.Println("AddToWishlist error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update wishlist")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"itemId": itemID, "saved": true})
}

// RemoveFromWishlist drops an item from the caller's wishlist.
// DELETE /api/wishlist/:itemId
func (h *Handler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if _, err := h.wishlist.DeleteOne(ctx, bson.M{"userid": userID, "itemid": ps.ByName("itemId")}); err != nil {
		log.Println("RemoveFromWishlist error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update wishlist")
		return
	}

	w.WriteHeader(http.StatusOK)
}
