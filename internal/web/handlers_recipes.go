package web

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"recipe-box/internal/auth"
	"recipe-box/internal/ingredient"
	"recipe-box/internal/metrics"
	"recipe-box/internal/pdf"
	"recipe-box/internal/recipe"
	"recipe-box/internal/shopping"
)

type recipeIngredientRequest struct {
	ID     int64 `json:"id" binding:"required"`
	Amount int64 `json:"amount" binding:"required"`
}

type recipeRequest struct {
	Name        string                    `json:"name" binding:"required"`
	Text        string                    `json:"text" binding:"required"`
	CookingTime int                       `json:"cooking_time" binding:"required"`
	Tags        []int64                   `json:"tags"`
	Ingredients []recipeIngredientRequest `json:"ingredients" binding:"required"`
}

func (s *Server) handleListTags(c *gin.Context) {
	tags, err := s.recipes.ListTags(c.Request.Context())
	if err != nil {
		log.Printf("Failed to list tags: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	if tags == nil {
		tags = []recipe.Tag{}
	}
	c.JSON(http.StatusOK, tags)
}

func (s *Server) handleGetTag(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "tag not found"})
		return
	}
	tag, err := s.recipes.GetTag(c.Request.Context(), id)
	if err != nil {
		log.Printf("Failed to get tag %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	if tag == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "tag not found"})
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (s *Server) handleListIngredients(c *gin.Context) {
	results, err := s.ingredients.SearchByPrefix(c.Request.Context(), c.Query("name"))
	if err != nil {
		log.Printf("Failed to search ingredients: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	if results == nil {
		results = []ingredient.Ingredient{}
	}
	c.JSON(http.StatusOK, results)
}

func (s *Server) handleGetIngredient(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "ingredient not found"})
		return
	}
	ing, err := s.ingredients.GetByID(c.Request.Context(), id)
	if err != nil {
		log.Printf("Failed to get ingredient %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	if ing == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "ingredient not found"})
		return
	}
	c.JSON(http.StatusOK, ing)
}

func (s *Server) handleListRecipes(c *gin.Context) {
	f := recipe.Filter{}
	if author := c.Query("author"); author != "" {
		id, err := strconv.ParseInt(author, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "author must be a user ID"})
			return
		}
		f.AuthorID = id
	}
	if tags := c.QueryArray("tags"); len(tags) > 0 {
		f.TagSlugs = tags
	}

	// Favorite and cart filters only make sense for an authenticated caller.
	if c.Query("is_favorited") == "1" || c.Query("is_in_shopping_cart") == "1" {
		userID, ok := s.currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "authentication required"})
			return
		}
		if c.Query("is_favorited") == "1" {
			f.FavoritedBy = userID
		}
		if c.Query("is_in_shopping_cart") == "1" {
			f.InCartOf = userID
		}
	}

	recipes, err := s.recipes.List(c.Request.Context(), f)
	if err != nil {
		log.Printf("Failed to list recipes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	if recipes == nil {
		recipes = []recipe.Recipe{}
	}
	c.JSON(http.StatusOK, recipes)
}

// handleGetRecipe serves /api/recipes/:id, where :id is a recipe ID or the
// reserved name "download_shopping_cart".
func (s *Server) handleGetRecipe(c *gin.Context) {
	id := c.Param("id")
	if id == "download_shopping_cart" {
		s.handleDownloadShoppingCart(c)
		return
	}

	rec, err := s.recipes.Get(c.Request.Context(), id)
	if err != nil {
		log.Printf("Failed to get recipe %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "recipe not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) buildRecipe(c *gin.Context, req recipeRequest, rec *recipe.Recipe) bool {
	rec.Name = req.Name
	rec.Text = req.Text
	rec.CookingTime = req.CookingTime
	rec.Tags = nil
	rec.Ingredients = nil

	for _, tagID := range req.Tags {
		tag, err := s.recipes.GetTag(c.Request.Context(), tagID)
		if err != nil {
			log.Printf("Failed to resolve tag %d: %v", tagID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
			return false
		}
		if tag == nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "unknown tag"})
			return false
		}
		rec.Tags = append(rec.Tags, *tag)
	}

	for _, line := range req.Ingredients {
		ing, err := s.ingredients.GetByID(c.Request.Context(), line.ID)
		if err != nil {
			log.Printf("Failed to resolve ingredient %d: %v", line.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
			return false
		}
		if ing == nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "unknown ingredient"})
			return false
		}
		rec.Ingredients = append(rec.Ingredients, recipe.IngredientLine{
			IngredientID: ing.ID,
			Name:         ing.Name,
			Unit:         ing.Unit,
			Amount:       line.Amount,
		})
	}
	return true
}

func (s *Server) handleCreateRecipe(c *gin.Context) {
	userID, _ := auth.UserID(c)

	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	rec := recipe.Recipe{AuthorID: userID}
	if !s.buildRecipe(c, req, &rec) {
		return
	}
	if err := s.recipes.Save(c.Request.Context(), &rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// ownRecipe loads the recipe and enforces that the caller authored it.
func (s *Server) ownRecipe(c *gin.Context) (*recipe.Recipe, bool) {
	userID, _ := auth.UserID(c)
	id := c.Param("id")

	rec, err := s.recipes.Get(c.Request.Context(), id)
	if err != nil {
		log.Printf("Failed to get recipe %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return nil, false
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "recipe not found"})
		return nil, false
	}
	if rec.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"detail": "not the author of this recipe"})
		return nil, false
	}
	return rec, true
}

func (s *Server) handleUpdateRecipe(c *gin.Context) {
	rec, ok := s.ownRecipe(c)
	if !ok {
		return
	}

	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if !s.buildRecipe(c, req, rec) {
		return
	}

	if err := s.recipes.Update(c.Request.Context(), rec); err != nil {
		if errors.Is(err, recipe.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "recipe not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleDeleteRecipe(c *gin.Context) {
	rec, ok := s.ownRecipe(c)
	if !ok {
		return
	}

	if err := s.recipes.Delete(c.Request.Context(), rec.ID); err != nil {
		if errors.Is(err, recipe.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "recipe not found"})
			return
		}
		log.Printf("Failed to delete recipe %s: %v", rec.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	c.Status(http.StatusNoContent)
}

// existingRecipe resolves :id to a stored recipe for favorite/cart actions.
func (s *Server) existingRecipe(c *gin.Context) (*recipe.Recipe, bool) {
	id := c.Param("id")
	rec, err := s.recipes.Get(c.Request.Context(), id)
	if err != nil {
		log.Printf("Failed to get recipe %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return nil, false
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "recipe not found"})
		return nil, false
	}
	return rec, true
}

func (s *Server) handleFavorite(c *gin.Context) {
	userID, _ := auth.UserID(c)
	rec, ok := s.existingRecipe(c)
	if !ok {
		return
	}
	if err := s.recipes.Favorite(c.Request.Context(), userID, rec.ID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "recipe is already a favorite"})
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) handleUnfavorite(c *gin.Context) {
	userID, _ := auth.UserID(c)
	rec, ok := s.existingRecipe(c)
	if !ok {
		return
	}
	removed, err := s.recipes.Unfavorite(c.Request.Context(), userID, rec.ID)
	if err != nil {
		log.Printf("Failed to unfavorite recipe %s: %v", rec.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"detail": "recipe is not a favorite"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleCartAdd(c *gin.Context) {
	userID, _ := auth.UserID(c)
	rec, ok := s.existingRecipe(c)
	if !ok {
		return
	}
	if err := s.carts.Add(c.Request.Context(), userID, rec.ID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "recipe is already in the shopping cart"})
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) handleCartRemove(c *gin.Context) {
	userID, _ := auth.UserID(c)
	rec, ok := s.existingRecipe(c)
	if !ok {
		return
	}
	removed, err := s.carts.Remove(c.Request.Context(), userID, rec.ID)
	if err != nil {
		log.Printf("Failed to remove recipe %s from cart: %v", rec.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"detail": "recipe is not in the shopping cart"})
		return
	}
	c.Status(http.StatusNoContent)
}

// handleDownloadShoppingCart aggregates the caller's cart into one shopping
// list and streams it as a PDF attachment.
func (s *Server) handleDownloadShoppingCart(c *gin.Context) {
	userID, ok := s.currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authentication required"})
		return
	}

	selection, err := s.carts.Selection(c.Request.Context(), userID)
	if err != nil {
		log.Printf("Failed to load cart for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}

	lines, err := shopping.Aggregate(c.Request.Context(), selection, s.recipes)
	if err != nil {
		if errors.Is(err, recipe.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "a recipe in the cart no longer exists"})
			return
		}
		log.Printf("Failed to aggregate shopping list for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}

	doc, err := pdf.Render(lines)
	if err != nil {
		log.Printf("Failed to render shopping list for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to render shopping list"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopping_cart.pdf"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}

type clipRequest struct {
	URL string `json:"url" binding:"required"`
}

// handleClip imports a recipe from an external page via the LLM-backed
// clipper and publishes it under the caller's account.
func (s *Server) handleClip(c *gin.Context) {
	if s.clip == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "recipe import is not configured"})
		return
	}
	userID, _ := auth.UserID(c)

	var req clipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	clipped, meta, err := s.clip.ClipURL(c.Request.Context(), req.URL)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"detail": err.Error()})
		return
	}
	if s.usage != nil {
		if err := s.usage.Record(c.Request.Context(), metrics.MapUsage("Clipper", meta.Usage, meta.Latency)); err != nil {
			log.Printf("Warning: failed to record clipper usage: %v", err)
		}
	}

	rec := recipe.Recipe{
		AuthorID:    userID,
		Name:        clipped.Title,
		Text:        clipped.Text,
		CookingTime: clipped.CookingTime,
	}
	for _, ing := range clipped.Ingredients {
		entry, err := s.ingredients.GetOrCreate(c.Request.Context(), ing.Name, ing.Unit)
		if err != nil {
			log.Printf("Failed to resolve clipped ingredient %q: %v", ing.Name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
			return
		}
		rec.Ingredients = append(rec.Ingredients, recipe.IngredientLine{
			IngredientID: entry.ID,
			Name:         entry.Name,
			Unit:         entry.Unit,
			Amount:       ing.Amount,
		})
	}

	if err := s.recipes.Save(c.Request.Context(), &rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, rec)
}
