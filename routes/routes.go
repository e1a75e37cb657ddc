package routes

import (
	"net/http"

	"github.com/jillianguerra/home-depot/auth"
	"github.com/jillianguerra/home-depot/catalog"
	"github.com/jillianguerra/home-depot/categories"
	"github.com/jillianguerra/home-depot/departments"
	"github.com/jillianguerra/home-depot/middleware"
	"github.com/jillianguerra/home-depot/orders"
	"github.com/jillianguerra/home-depot/ratelim"
	"github.com/jillianguerra/home-depot/reviews"
	"github.com/jillianguerra/home-depot/wishlist"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/itempic/*filepath", http.Dir("static/itempic"))
}

func AddAuthRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, h *auth.Handler) {
	router.POST("/api/auth/register", rl.Limit(h.Register))
	router.POST("/api/auth/login", rl.Limit(h.Login))
	router.POST("/api/auth/guest", rl.Limit(h.GuestLogin))
	router.POST("/api/auth/token/refresh", rl.Limit(h.RefreshToken))
	router.POST("/api/auth/logout", middleware.Authenticate(h.Logout))
}

func AddItemRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, h *catalog.Handler) {
	router.GET("/api/items", rl.Limit(h.GetItems))
	router.GET("/api/items/featured", rl.Limit(h.GetFeaturedItems))
	router.GET("/api/items/category/:categoryId", rl.Limit(h.GetItemsByCategory))
	router.GET("/api/items/search/:term", rl.Limit(h.SearchItems))
	router.GET("/api/items/item/:id", h.GetItem)
	router.POST("/api/items", middleware.Authenticate(h.CreateItem))
	router.PUT("/api/items/item/:id", middleware.Authenticate(h.UpdateItem))
	router.DELETE("/api/items/item/:id", middleware.Authenticate(h.DeleteItem))
	router.POST("/api/items/item/:id/image", middleware.Authenticate(h.UploadItemImage))
}

func AddOrderRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, h *orders.Handler) {
	router.GET("/api/orders/cart", middleware.Authenticate(h.GetCart))
	router.POST("/api/orders/cart/items/:itemId", rl.Limit(middleware.Authenticate(h.AddToCart)))
	router.PUT("/api/orders/cart/qty", rl.Limit(middleware.Authenticate(h.SetItemQty)))
	router.POST("/api/orders/cart/checkout", rl.Limit(middleware.Authenticate(h.Checkout)))
	router.GET("/api/orders/history", middleware.Authenticate(h.History))
	router.GET("/api/orders/receipt/:orderId", rl.Limit(middleware.Authenticate(h.Receipt)))
	router.GET("/api/orders/updates", h.OrderUpdates)
}

func AddReviewRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, h *reviews.Handler) {
	router.GET("/api/reviews/item/:itemId", rl.Limit(h.GetReviews))
	router.GET("/api/reviews/item/:itemId/:reviewId", h.GetReview)
	router.POST("/api/reviews/item/:itemId", rl.Limit(middleware.Authenticate(h.AddReview)))
	router.PUT("/api/reviews/item/:itemId/:reviewId", middleware.Authenticate(h.EditReview))
	router.DELETE("/api/reviews/item/:itemId/:reviewId", middleware.Authenticate(h.DeleteReview))
}

func AddWishlistRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, h *wishlist.Handler) {
	router.GET("/api/wishlist", middleware.Authenticate(h.GetWishlist))
	router.POST("/api/wishlist/:itemId", rl.Limit(middleware.Authenticate(h.AddToWishlist)))
	router.DELETE("/api/wishlist/:itemId", middleware.Authenticate(h.RemoveFromWishlist))
}

func AddCategoryRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, h *categories.Handler) {
	router.GET("/api/categories", rl.Limit(h.GetCategories))
	router.GET("/api/categories/:categoryId", h.GetCategory)
	router.POST("/api/categories", middleware.Authenticate(h.CreateCategory))
	router.DELETE("/api/categories/:categoryId", middleware.Authenticate(h.DeleteCategory))
}

func AddDepartmentRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, h *departments.Handler) {
	router.GET("/api/departments", rl.Limit(h.GetDepartments))
	router.GET("/api/departments/:departmentId", h.GetDepartment)
	router.POST("/api/departments", middleware.Authenticate(h.CreateDepartment))
}
