package app

import (
	"encoding/json"

	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// StoreApp is the part of an ABCI application that owns the state: it
// commits blocks, answers queries and loads the genesis. Transactions are
// processed by BaseApp, which embeds it.
//
// ABCI calls that carry no user input, like Commit or InitChain, cannot
// report an error to tendermint. A failure there panics and stops the node.
type StoreApp struct {
	name        string
	logger      log.Logger
	store       *CommitStore
	initializer tokendist.Initializer
	queryRouter tokendist.QueryRouter

	// chainID is empty until the genesis was loaded.
	chainID string
	// baseContext lives as long as the application. blockContext is
	// derived from it by every BeginBlock.
	baseContext  tokendist.Context
	blockContext tokendist.Context
}

// NewStoreApp returns an application serving the latest version found in
// the store. Queries are resolved with qr. The context is the parent of all
// contexts handed to handlers.
func NewStoreApp(name string, kv tokendist.CommitKVStore, qr tokendist.QueryRouter, ctx tokendist.Context) (*StoreApp, error) {
	cs, err := NewCommitStore(kv)
	if err != nil {
		return nil, err
	}
	s := &StoreApp{
		name:        name,
		store:       cs,
		queryRouter: qr,
		baseContext: ctx,
	}
	s.WithLogger(log.NewNopLogger())

	if s.chainID, err = loadChainID(s.DeliverStore()); err != nil {
		return nil, err
	}
	if s.chainID != "" {
		s.baseContext = tokendist.WithChainID(s.baseContext, s.chainID)
	}
	latest, err := s.store.CommitInfo()
	if err != nil {
		return nil, errors.Wrap(err, "commit info")
	}
	s.blockContext = tokendist.WithHeight(s.baseContext, latest.Version)
	return s, nil
}

// WithInit sets the initializer that loads the genesis app_state.
func (s *StoreApp) WithInit(init tokendist.Initializer) *StoreApp {
	s.initializer = init
	return s
}

// WithLogger sets the logger of the application and of every context it
// creates.
func (s *StoreApp) WithLogger(logger log.Logger) *StoreApp {
	s.logger = logger
	s.baseContext = tokendist.WithLogger(s.baseContext, logger)
	return s
}

// GetChainID returns the chain ID, or an empty string before the genesis was
// loaded.
func (s *StoreApp) GetChainID() string {
	return s.chainID
}

// BlockContext is the context of the block being processed.
func (s *StoreApp) BlockContext() tokendist.Context {
	return s.blockContext
}

// DeliverStore is the state of the block being processed.
func (s *StoreApp) DeliverStore() tokendist.CacheableKVStore {
	return s.store.DeliverStore()
}

// CheckStore is the state CheckTx runs against.
func (s *StoreApp) CheckStore() tokendist.CacheableKVStore {
	return s.store.CheckStore()
}

// loadGenesis saves the chain ID and runs the initializer with the
// app_state. It may only succeed once in the lifetime of a chain.
func (s *StoreApp) loadGenesis(chainID string, appState []byte) error {
	if s.chainID != "" {
		return errors.Wrapf(errors.ErrState, "app state previously loaded for chain %q", s.chainID)
	}
	if len(appState) == 0 {
		return errors.Wrap(errors.ErrEmpty, "app_state not set in genesis")
	}
	var opts tokendist.Options
	if err := json.Unmarshal(appState, &opts); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := saveChainID(s.DeliverStore(), chainID); err != nil {
		return err
	}
	s.chainID = chainID
	s.baseContext = tokendist.WithChainID(s.baseContext, chainID)
	if s.initializer == nil {
		return nil
	}
	return s.initializer.FromGenesis(opts, s.DeliverStore())
}
