package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jillianguerra/home-depot/globals"
	"github.com/jillianguerra/home-depot/middleware"
	"github.com/jillianguerra/home-depot/models"
	"github.com/jillianguerra/home-depot/rdx"
	"github.com/jillianguerra/home-depot/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
	guestTokenTTL   = 24 * time.Hour
)

type Handler struct {
	users *mongo.Collection
}

func NewHandler(users *mongo.Collection) *Handler {
	return &Handler{users: users}
}

// Register creates an account. POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var input struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Username == "" || input.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	count, err := h.users.CountDocuments(ctx, bson.M{"username": input.Username})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Registration failed")
		return
	}
	if count > 0 {
		utils.RespondWithError(w, http.StatusConflict, "Username is taken")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	user := models.User{
		UserID:    "u" + utils.GenerateID(10),
		Username:  input.Username,
		Email:     input.Email,
		Password:  string(hashed),
		Role:      []string{"user"},
		CreatedAt: time.Now(),
	}

	if _, err := h.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithError(w, http.StatusConflict, "Username is taken")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"userid": user.UserID, "username": user.Username})
}

// Login exchanges credentials for an access token and a refresh token.
// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Username == "" || input.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	var user models.User
	if err := h.users.FindOne(ctx, bson.M{"username": input.Username}).Decode(&user); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	h.issueTokens(ctx, w, user)
}

// GuestLogin mints a throwaway account so an anonymous visitor can carry a
// cart. POST /api/auth/guest
func (h *Handler) GuestLogin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user := models.User{
		UserID:    "g" + utils.GenerateID(10),
		Username:  "guest-" + utils.GenerateID(6),
		Guest:     true,
		Role:      []string{"guest"},
		CreatedAt: time.Now(),
	}
	if _, err := h.users.InsertOne(ctx, user); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Guest login failed")
		return
	}

	token, err := generateAccessToken(user, guestTokenTTL)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Guest login failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"token":    token,
		"userid":   user.UserID,
		"username": user.Username,
		"guest":    true,
	})
}

// RefreshToken exchanges a valid refresh token for a fresh token pair.
// POST /api/auth/refresh
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var input struct {
		UserID       string `json:"userid"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.UserID == "" || input.RefreshToken == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	var user models.User
	if err := h.users.FindOne(ctx, bson.M{"userid": input.UserID}).Decode(&user); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	if user.RefreshToken != hashToken(input.RefreshToken) || time.Now().After(user.RefreshExpiry) {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	h.issueTokens(ctx, w, user)
}

// Logout revokes the user's refresh token and cached access token.
// POST /api/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	_, err := h.users.UpdateOne(ctx, bson.M{"userid": userID},
		bson.M{"$unset": bson.M{"refresh_token": "", "refresh_expiry": ""}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Logout failed")
		return
	}

	if err := rdx.RdxHdel(ctx, "tokki", userID); err != nil && err != rdx.ErrNotConnected {
		log.Printf("Redis token removal failed: %v", err)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Logged out"})
}

func (h *Handler) issueTokens(ctx context.Context, w http.ResponseWriter, user models.User) {
	token, err := generateAccessToken(user, accessTokenTTL)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	refreshToken, err := generateRefreshToken()
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate refresh token")
		return
	}

	_, err = h.users.UpdateOne(ctx,
		bson.M{"userid": user.UserID},
		bson.M{"$set": bson.M{
			"refresh_token":  hashToken(refreshToken),
			"refresh_expiry": time.Now().Add(refreshTokenTTL),
			"last_login":     time.Now(),
		}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to store refresh token")
		return
	}

	if err := rdx.RdxHset(ctx, "tokki", user.UserID, token); err != nil && err != rdx.ErrNotConnected {
		log.Printf("Redis token storage failed: %v", err)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"token":        token,
		"refreshToken": refreshToken,
		"userid":       user.UserID,
	})
}

func generateAccessToken(user models.User, ttl time.Duration) (string, error) {
	claims := middleware.Claims{
		Username: user.Username,
		UserID:   user.UserID,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(globals.JwtSecret)
}

func generateRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
