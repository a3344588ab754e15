// Package app assembles the distd application: the codec, the decorator
// chain, the message router and the query router.
package app

import (
	"context"
	"os"
	"path/filepath"

	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/app"
	"github.com/iov-one/tokendist/errors"
	"github.com/iov-one/tokendist/store/bolt"
	"github.com/iov-one/tokendist/x"
	"github.com/iov-one/tokendist/x/cash"
	"github.com/iov-one/tokendist/x/distributor"
	"github.com/iov-one/tokendist/x/sigs"
	"github.com/iov-one/tokendist/x/utils"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// Name is reported by the abci Info call.
const Name = "distd"

// Authenticator grants the conditions of every key that signed the
// transaction.
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate())
}

// CashControl returns the controller of all balances.
func CashControl() cash.Controller {
	return cash.NewController(cash.NewBucket())
}

// Chain returns the decorators run before every handler.
func Chain(authFn x.Authenticator) app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewSavepoint().OnCheck(),
		sigs.NewDecorator(),
		utils.NewActionTagger(authFn),
		// Signature sequences are consumed even when the message fails.
		utils.NewSavepoint().OnDeliver(),
	)
}

// Router returns a router dispatching all messages of this application.
func Router(authFn x.Authenticator) *app.Router {
	r := app.NewRouter()
	ctrl := CashControl()
	cash.RegisterRoutes(r, authFn, ctrl)
	distributor.RegisterRoutes(r, authFn, ctrl)
	sigs.RegisterRoutes(r, authFn)
	return r
}

// QueryRouter serves "/distributors", "/policies", "/cash" and "/auth"
// with their indexes.
func QueryRouter() tokendist.QueryRouter {
	r := tokendist.NewQueryRouter()
	r.RegisterAll(
		distributor.RegisterQuery,
		cash.RegisterQuery,
		sigs.RegisterQuery,
	)
	return r
}

// Initializers returns the genesis initializers of all extensions.
func Initializers() tokendist.Initializer {
	return tokendist.ChainInitializers(
		cash.Initializer{},
		distributor.Initializer{},
	)
}

// Stack is the full transaction handler of distd.
func Stack() tokendist.Handler {
	authFn := Authenticator()
	return Chain(authFn).WithHandler(Router(authFn))
}

// Application returns the ABCI application processing transactions with h
// on top of kv.
func Application(h tokendist.Handler, kv tokendist.CommitKVStore, logger log.Logger, debug bool) (app.BaseApp, error) {
	store, err := app.NewStoreApp(Name, kv, QueryRouter(), context.Background())
	if err != nil {
		return app.BaseApp{}, err
	}
	store.WithInit(Initializers()).WithLogger(logger)
	return app.NewBaseApp(store, TxDecoder, h, debug), nil
}

// GenerateApp opens the database under home and returns the application
// served by the start command.
func GenerateApp(home string, logger log.Logger, debug bool) (abci.Application, error) {
	dir := filepath.Join(home, "data")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "create %s: %s", dir, err)
	}
	kv, err := bolt.NewCommitStore(filepath.Join(dir, "distd.db"))
	if err != nil {
		return nil, err
	}
	return Application(Stack(), kv, logger, debug)
}
