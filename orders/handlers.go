package orders

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
)

const requestTimeout = 10 * time.Second

// Handler exposes the cart/order aggregate over HTTP. The API layer has
// already authenticated the user; the user id comes from the request
// context.
type Handler struct {
	svc *Service
	hub *Hub
}

func NewHandler(svc *Service, hub *Hub) *Handler {
	return &Handler{svc: svc, hub: hub}
}

// GetCart returns the user's current cart, lazily creating it.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	cart, err := h.svc.GetCart(ctx, userID)
	if err != nil {
		log.Println("GetCart error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not load cart")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, cart)
}

// AddToCart adds one unit of an item (optionally a specific variant) to the
// cart. POST /api/orders/cart/items/:itemId
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Body is optional; without it the item's base configuration is added.
	var body struct {
		SubItemID string `json:"subItemId"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	cart, err := h.svc.GetCart(ctx, userID)
	if err != nil {
		log.Println("AddToCart load error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not load cart")
		return
	}

	cart, err = h.svc.AddItem(ctx, cart, ps.ByName("itemId"), body.SubItemID)
	if err != nil {
		respondOrderError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, cart)
}

// SetItemQty overwrites a line's quantity; zero or below removes the line.
// PUT /api/orders/cart/qty
func (h *Handler) SetItemQty(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		ItemID    string `json:"itemId"`
		SubItemID string `json:"subItemId"`
		NewQty    int    `json:"newQty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ItemID == "" {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	cart, err := h.svc.GetCart(ctx, userID)
	if err != nil {
		log.Println("SetItemQty load error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not load cart")
		return
	}

	cart, err = h.svc.SetItemQty(ctx, cart, body.ItemID, body.SubItemID, body.NewQty)
	if err != nil {
		respondOrderError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, cart)
}

// Checkout finalizes the current cart. POST /api/orders/cart/checkout
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	cart, err := h.svc.GetCart(ctx, userID)
	if err != nil {
		log.Println("Checkout load error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not load cart")
		return
	}

	order, err := h.svc.Checkout(ctx, cart)
	if err != nil {
		respondOrderError(w, err)
		return
	}

	go mq.Emit(ctx, "order-checked-out", mq.Index{
		EntityType: "order", EntityId: order.ID, Method: "POST",
	})
	if h.hub != nil {
		h.hub.Broadcast(*order)
	}

	utils.RespondWithJSON(w, http.StatusOK, order)
}

// History lists the user's paid orders, most recent first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	history, err := h.svc.History(ctx, userID)
	if err != nil {
		log.Println("History error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not load order history")
		return
	}
	if history == nil {
		history = []models.Order{}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"orders": history})
}

func respondOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrItemNotFound), errors.Is(err, ErrOrderNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidReference), errors.Is(err, ErrEmptyCart):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrAlreadyPaid), errors.Is(err, ErrConflict):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		log.Println("order operation error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
