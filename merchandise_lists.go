package bazaar

import (
	"context"
	"net/http"

	"github.com/always-cache/bazaar/models"
	"github.com/always-cache/bazaar/store"
)

func (s *Server) listMerchandiseLists(w http.ResponseWriter, r *http.Request) {
	p, err := listParams(r, store.MerchandiseListOrderable)
	if err != nil {
		writeError(w, r, err)
		return
	}
	serveCached(w, r, s.caches.ListMerchandiseLists, p, okReply(func(ctx context.Context) ([]models.MerchandiseList, error) {
		return s.store.ListMerchandiseLists(ctx, p)
	}))
}

func (s *Server) getMerchandiseList(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	serveCached(w, r, s.caches.MerchandiseList, id, okReply(func(ctx context.Context) (models.MerchandiseList, error) {
		return s.store.GetMerchandiseList(ctx, id)
	}))
}

func (s *Server) getMerchandiseListByShopID(w http.ResponseWriter, r *http.Request) {
	shopID, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	serveCached(w, r, s.caches.MerchandiseListByShopID, shopID, okReply(func(ctx context.Context) (models.MerchandiseList, error) {
		return s.store.GetMerchandiseListByShopID(ctx, shopID)
	}))
}

func (s *Server) createMerchandiseList(w http.ResponseWriter, r *http.Request) {
	ownerID, err := s.authenticate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var posted models.PostedMerchandiseList
	ct, err := s.decodeBody(w, r, &posted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.store.CreateMerchandiseList(r.Context(), ownerID, posted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.caches.MerchandiseListCreated(list.ShopID)
	s.created(w, r, ct, s.location("/merchandise_lists/%d", list.ID), list)
}

func (s *Server) updateMerchandiseList(w http.ResponseWriter, r *http.Request) {
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
	var posted models.PostedMerchandiseList
	ct, err := s.decodeBody(w, r, &posted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.store.UpdateMerchandiseList(r.Context(), ownerID, id, posted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.caches.MerchandiseListChanged(list.ID, list.ShopID)
	s.created(w, r, ct, s.location("/merchandise_lists/%d", list.ID), list)
}

func (s *Server) updateMerchandiseListByShopID(w http.ResponseWriter, r *http.Request) {
	shopID, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ownerID, err := s.authenticate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var posted models.PostedMerchandiseList
	ct, err := s.decodeBody(w, r, &posted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.store.UpdateMerchandiseListByShopID(r.Context(), ownerID, shopID, posted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.caches.MerchandiseListChanged(list.ID, list.ShopID)
	s.created(w, r, ct, s.location("/merchandise_lists/%d", list.ID), list)
}

func (s *Server) deleteMerchandiseList(w http.ResponseWriter, r *http.Request) {
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
	list, err := s.store.DeleteMerchandiseList(r.Context(), ownerID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.caches.MerchandiseListChanged(list.ID, list.ShopID)
	noContent(w)
}
