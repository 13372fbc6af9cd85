package bazaar

import (
	"context"
	"net/http"

	"github.com/always-cache/bazaar/models"
	cachekey "github.com/always-cache/bazaar/pkg/cache-key"
	"github.com/always-cache/bazaar/store"
)

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	p, err := listParams(r, store.TransactionOrderable)
	if err != nil {
		writeError(w, r, err)
		return
	}
	serveCached(w, r, s.caches.ListTransactions, p, okReply(func(ctx context.Context) ([]models.Transaction, error) {
		return s.store.ListTransactions(ctx, p)
	}))
}

func (s *Server) listTransactionsByShopID(w http.ResponseWriter, r *http.Request) {
	shopID, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := listParams(r, store.TransactionOrderable)
	if err != nil {
		writeError(w, r, err)
		return
	}
	key := cachekey.ShopList{ShopID: shopID, ListParams: p}
	serveCached(w, r, s.caches.ListTransactionsByShopID, key, okReply(func(ctx context.Context) ([]models.Transaction, error) {
		return s.store.ListTransactionsByShopID(ctx, shopID, p)
	}))
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	serveCached(w, r, s.caches.Transaction, id, okReply(func(ctx context.Context) (models.Transaction, error) {
		return s.store.GetTransaction(ctx, id)
	}))
}

// createTransaction records the transaction and updates the shop's merchandise quantities.
func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	ownerID, err := s.authenticate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var posted models.PostedTransaction
	ct, err := s.decodeBody(w, r, &posted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	transaction, list, err := s.store.CreateTransaction(r.Context(), ownerID, posted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	getLogger(r).Debug().
		Int64("shop_id", transaction.ShopID).
		Bool("is_sell", transaction.IsSell).
		Int32("quantity", transaction.Quantity).
		Msg("Transaction recorded")
	s.caches.TransactionCreated(transaction.ShopID, list.ID)
	s.created(w, r, ct, s.location("/transactions/%d", transaction.ID), transaction)
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
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
	if _, err := s.store.DeleteTransaction(r.Context(), ownerID, id); err != nil {
		writeError(w, r, err)
		return
	}
	s.caches.TransactionDeleted(id)
	noContent(w)
}
