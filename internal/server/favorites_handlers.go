package server

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"govent/internal/auth"
)

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	favorites, err := s.Favorites.List(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("list favorites for member %d failed: %v", claims.UserID, err)
		writeFailure(w, http.StatusInternalServerError, "Failed to load favorites")
		return
	}
	if favorites == nil {
		favorites = []int{}
	}

	writeSuccess(w, map[string]interface{}{"favorites": favorites})
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	productID, err := strconv.Atoi(chi.URLParam(r, "pid"))
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	err = s.Favorites.Add(r.Context(), claims.UserID, productID)
	switch {
	case err == nil:
		writeSuccess(w, map[string]interface{}{"productId": productID})
	case errors.Is(err, auth.ErrAlreadyFavorite):
		writeFailure(w, http.StatusBadRequest, "Product is already in favorites")
	default:
		log.Printf("add favorite %d for member %d failed: %v", productID, claims.UserID, err)
		writeFailure(w, http.StatusInternalServerError, "Failed to add favorite")
	}
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	productID, err := strconv.Atoi(chi.URLParam(r, "pid"))
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	err = s.Favorites.Remove(r.Context(), claims.UserID, productID)
	switch {
	case err == nil:
		writeSuccess(w, map[string]interface{}{"productId": productID})
	case errors.Is(err, auth.ErrNotFavorite):
		writeFailure(w, http.StatusBadRequest, "Product is not in favorites")
	default:
		log.Printf("remove favorite %d for member %d failed: %v", productID, claims.UserID, err)
		writeFailure(w, http.StatusInternalServerError, "Failed to remove favorite")
	}
}
