package bazaar

import (
	"context"
	"net/http"

	"github.com/always-cache/bazaar/models"
	"github.com/always-cache/bazaar/store"
)

func (s *Server) listInteriorRefLists(w http.ResponseWriter, r *http.Request) {
	p, err := listParams(r, store.InteriorRefListOrderable)
	if err != nil {
		writeError(w, r, err)
		return
	}
	serveCached(w, r, s.caches.ListInteriorRefLists, p, okReply(func(ctx context.Context) ([]models.InteriorRefList, error) {
		return s.store.ListInteriorRefLists(ctx, p)
	}))
}

func (s *Server) getInteriorRefList(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	serveCached(w, r, s.caches.InteriorRefList, id, okReply(func(ctx context.Context) (models.InteriorRefList, error) {
		return s.store.GetInteriorRefList(ctx, id)
	}))
}

func (s *Server) getInteriorRefListByShopID(w http.ResponseWriter, r *http.Request) {
	shopID, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	serveCached(w, r, s.caches.InteriorRefListByShopID, shopID, okReply(func(ctx context.Context) (models.InteriorRefList, error) {
		return s.store.GetInteriorRefListByShopID(ctx, shopID)
	}))
}

func (s *Server) createInteriorRefList(w http.ResponseWriter, r *http.Request) {
	ownerID, err := s.authenticate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var posted models.PostedInteriorRefList
	ct, err := s.decodeBody(w, r, &posted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.store.CreateInteriorRefList(r.Context(), ownerID, posted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.caches.InteriorRefListCreated(list.ShopID)
	s.created(w, r, ct, s.location("/interior_ref_lists/%d", list.ID), list)
}

func (s *Server) updateInteriorRefList(w http.ResponseWriter, r *http.Request) {
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
	var posted models.PostedInteriorRefList
	ct, err := s.decodeBody(w, r, &posted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.store.UpdateInteriorRefList(r.Context(), ownerID, id, posted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.caches.InteriorRefListChanged(list.ID, list.ShopID)
	s.created(w, r, ct, s.location("/interior_ref_lists/%d", list.ID), list)
}

func (s *Server) updateInteriorRefListByShopID(w http.ResponseWriter, r *http.Request) {
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
	var posted models.PostedInteriorRefList
	ct, err := s.decodeBody(w, r, &posted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.store.UpdateInteriorRefListByShopID(r.Context(), ownerID, shopID, posted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.caches.InteriorRefListChanged(list.ID, list.ShopID)
	s.created(w, r, ct, s.location("/interior_ref_lists/%d", list.ID), list)
}

func (s *Server) deleteInteriorRefList(w http.ResponseWriter, r *http.Request) {
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
	list, err := s.store.DeleteInteriorRefList(r.Context(), ownerID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.caches.InteriorRefListChanged(list.ID, list.ShopID)
	noContent(w)
}
