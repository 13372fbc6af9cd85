package bazaar

import (
	"context"
	"net/http"

	"github.com/always-cache/bazaar/models"
	"github.com/always-cache/bazaar/store"
)

func (s *Server) listShops(w http.ResponseWriter, r *http.Request) {
	p, err := listParams(r, store.ShopOrderable)
	if err != nil {
		writeError(w, r, err)
		return
	}
	serveCached(w, r, s.caches.ListShops, p, okReply(func(ctx context.Context) ([]models.Shop, error) {
		return s.store.ListShops(ctx, p)
	}))
}

func (s *Server) getShop(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	serveCached(w, r, s.caches.Shop, id, okReply(func(ctx context.Context) (models.Shop, error) {
		return s.store.GetShop(ctx, id)
	}))
}

func (s *Server) createShop(w http.ResponseWriter, r *http.Request) {
	ownerID, err := s.authenticate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var posted models.PostedShop
	ct, err := s.decodeBody(w, r, &posted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shop, err := s.store.CreateShop(r.Context(), ownerID, posted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.caches.ShopCreated(shop.ID)
	s.created(w, r, ct, s.location("/shops/%d", shop.ID), shop)
}

func (s *Server) updateShop(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ownerID, err := s.authenticate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var posted models.PostedShop
	ct, err := s.decodeBody(w, r, &posted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shop, err := s.store.UpdateShop(r.Context(), ownerID, id, posted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if posted.OwnerID != nil && *posted.OwnerID != ownerID {
		s.caches.ShopTransferred(id)
	} else {
		s.caches.ShopUpdated(id)
	}
	s.created(w, r, ct, s.location("/shops/%d", shop.ID), shop)
}

func (s *Server) deleteShop(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ownerID, err := s.authenticate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.DeleteShop(r.Context(), ownerID, id); err != nil {
		writeError(w, r, err)
		return
	}
	s.caches.ShopDeleted(id)
	noContent(w)
}
