// Package web exposes the HTTP API: recipes, tags, ingredients, users,
// favorites, subscriptions and the shopping-cart endpoints including the
// aggregated PDF download.
package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recipe-box/internal/auth"
	"recipe-box/internal/clipper"
	"recipe-box/internal/ingredient"
	"recipe-box/internal/metrics"
	"recipe-box/internal/recipe"
	"recipe-box/internal/shopping"
	"recipe-box/internal/user"
)

// Server is the recipe-box API server.
type Server struct {
	users       *user.Repository
	recipes     *recipe.Repository
	ingredients *ingredient.Repository
	carts       *shopping.Repository
	tokens      *auth.Tokens
	clip        *clipper.Clipper // nil when no LLM backend is configured
	usage       *metrics.Store
	router      *gin.Engine
}

// NewServer creates the API server and registers all routes.
func NewServer(
	users *user.Repository,
	recipes *recipe.Repository,
	ingredients *ingredient.Repository,
	carts *shopping.Repository,
	tokens *auth.Tokens,
	clip *clipper.Clipper,
	usage *metrics.Store,
) *Server {
	router := gin.Default()

	s := &Server{
		users:       users,
		recipes:     recipes,
		ingredients: ingredients,
		carts:       carts,
		tokens:      tokens,
		clip:        clip,
		usage:       usage,
		router:      router,
	}

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := router.Group("/api")
	{
		api.POST("/auth/token/login", s.handleLogin)

		api.POST("/users", s.handleRegister)
		// "me" and "subscriptions" are resolved inside the handler so the
		// static names can share the segment with numeric IDs.
		api.GET("/users/:id", s.handleGetUser)

		api.GET("/tags", s.handleListTags)
		api.GET("/tags/:id", s.handleGetTag)

		api.GET("/ingredients", s.handleListIngredients)
		api.GET("/ingredients/:id", s.handleGetIngredient)

		api.GET("/recipes", s.handleListRecipes)
		// "download_shopping_cart" shares the segment with recipe IDs, same
		// dispatch as /users/:id.
		api.GET("/recipes/:id", s.handleGetRecipe)

		authed := api.Group("", auth.Middleware(tokens))
		{
			authed.POST("/users/:id/subscribe", s.handleSubscribe)
			authed.DELETE("/users/:id/subscribe", s.handleUnsubscribe)

			authed.POST("/recipes", s.handleCreateRecipe)
			authed.PATCH("/recipes/:id", s.handleUpdateRecipe)
			authed.DELETE("/recipes/:id", s.handleDeleteRecipe)

			authed.POST("/recipes/:id/favorite", s.handleFavorite)
			authed.DELETE("/recipes/:id/favorite", s.handleUnfavorite)

			authed.POST("/recipes/:id/shopping_cart", s.handleCartAdd)
			authed.DELETE("/recipes/:id/shopping_cart", s.handleCartRemove)

			authed.POST("/clip", s.handleClip)
		}
	}

	return s
}

// Handler returns the root http.Handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// currentUser verifies the request's Bearer token. Used directly by the
// dispatch handlers that cannot sit behind the auth middleware.
func (s *Server) currentUser(c *gin.Context) (int64, bool) {
	if id, ok := auth.UserID(c); ok {
		return id, true
	}
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return 0, false
	}
	id, err := s.tokens.Verify(header[len(prefix):])
	if err != nil {
		return 0, false
	}
	return id, true
}
