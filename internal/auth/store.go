package auth

import (
	"github.com/Tiliavir/adolog/internal/kvstore"
	"github.com/Tiliavir/adolog/internal/model"
)

const tokensKey = "graphTokens"

// TokenStore persists the OAuth token pair. There is no concurrency control:
// when two sign-ins race the last write wins.
type TokenStore interface {
	// Get returns the stored pair or nil when there is none.
	Get() (*model.TokenPair, error)
	Set(pair model.TokenPair) error
	Clear() error
}

// KVTokenStore keeps the token pair in the local key-value store.
type KVTokenStore struct {
	kv *kvstore.Store
}

func NewKVTokenStore(kv *kvstore.Store) *KVTokenStore {
	return &KVTokenStore{kv: kv}
}

func (s *KVTokenStore) Get() (*model.TokenPair, error) {
	var pair model.TokenPair
	ok, err := s.kv.Get(tokensKey, &pair)
	if err != nil || !ok {
		return nil, err
	}
	return &pair, nil
}

func (s *KVTokenStore) Set(pair model.TokenPair) error {
	return s.kv.Set(tokensKey, pair)
}

func (s *KVTokenStore) Clear() error {
	return s.kv.Delete(tokensKey)
}
