package bazaar

import (
	"context"
	"net/http"

	"github.com/always-cache/bazaar/models"
	"github.com/always-cache/bazaar/store"
)

func (s *Server) listOwners(w http.ResponseWriter, r *http.Request) {
	p, err := listParams(r, store.OwnerOrderable)
	if err != nil {
		writeError(w, r, err)
		return
	}
	serveCached(w, r, s.caches.ListOwners, p, okReply(func(ctx context.Context) ([]models.Owner, error) {
		return s.store.ListOwners(ctx, p)
	}))
}

func (s *Server) getOwner(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	serveCached(w, r, s.caches.Owner, id, okReply(func(ctx context.Context) (models.Owner, error) {
		return s.store.GetOwner(ctx, id)
	}))
}

// createOwner registers the Api-Key of the request. No existing owner is needed.
func (s *Server) createOwner(w http.ResponseWriter, r *http.Request) {
	key, err := apiKey(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var posted models.PostedOwner
	ct, err := s.decodeBody(w, r, &posted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	owner, err := s.store.CreateOwner(r.Context(), posted, key, remoteIP(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	getLogger(r).Info().Int64("owner_id", owner.ID).Msg("Owner created")
	s.caches.OwnerCreated()
	s.created(w, r, ct, s.location("/owners/%d", owner.ID), owner)
}

func (s *Server) updateOwner(w http.ResponseWriter, r *http.Request) {
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
	var posted models.PostedOwner
	ct, err := s.decodeBody(w, r, &posted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	owner, err := s.store.UpdateOwner(r.Context(), ownerID, id, posted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.caches.OwnerUpdated(id)
	s.created(w, r, ct, s.location("/owners/%d", owner.ID), owner)
}

func (s *Server) deleteOwner(w http.ResponseWriter, r *http.Request) {
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
	owner, err := s.store.DeleteOwner(r.Context(), ownerID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	getLogger(r).Info().Int64("owner_id", owner.ID).Msg("Owner deleted")
	s.caches.OwnerDeleted(owner.ID, owner.APIKey)
	noContent(w)
}
