package tokendist

import (
	"fmt"
	"strings"
)

// A query path may carry a modifier after "?".
const (
	// KeyQueryMod looks up the model stored under the exact key.
	KeyQueryMod = ""
	// PrefixQueryMod lists every model whose key starts with the data.
	PrefixQueryMod = "prefix"
)

// Model is a key-value pair returned by a query.
type Model struct {
	Key   []byte
	Value []byte
}

func Pair(key, value []byte) Model {
	return Model{Key: key, Value: value}
}

// QueryHandler answers the queries sent to one path. Returned keys are
// database keys and carry the bucket prefix.
type QueryHandler interface {
	Query(db ReadOnlyKVStore, mod string, data []byte) ([]Model, error)
}

// QueryRegister lets an extension expose its handlers.
type QueryRegister func(QueryRouter)

// QueryRouter maps paths like "/distributors" or "/distributors/owner" to
// their handlers.
type QueryRouter struct {
	routes map[string]QueryHandler
}

func NewQueryRouter() QueryRouter {
	return QueryRouter{routes: map[string]QueryHandler{}}
}

func (r QueryRouter) RegisterAll(regs ...QueryRegister) {
	for _, register := range regs {
		register(r)
	}
}

// Register binds h to path. Paths start with a slash and carry no
// modifier. Binding a path twice panics.
func (r QueryRouter) Register(path string, h QueryHandler) {
	switch {
	case !strings.HasPrefix(path, "/"), strings.Contains(path, "?"):
		panic(fmt.Sprintf("invalid query path: %q", path))
	case r.routes[path] != nil:
		panic(fmt.Sprintf("query path %q already registered", path))
	}
	r.routes[path] = h
}

// Handler returns nil for an unknown path.
func (r QueryRouter) Handler(path string) QueryHandler {
	return r.routes[path]
}
