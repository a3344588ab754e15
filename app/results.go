package app

import (
	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/errors"
	amino "github.com/tendermint/go-amino"
)

// ResultSet is the value returned by an abci query. It holds either the
// keys or the values of all matched models, in the same order.
type ResultSet struct {
	Results [][]byte `json:"results"`
}

var _ tokendist.Persistent = (*ResultSet)(nil)

// Marshal encodes the set with amino.
func (r *ResultSet) Marshal() ([]byte, error) {
	return amino.MarshalBinaryBare(r)
}

// Unmarshal decodes an amino encoded set.
func (r *ResultSet) Unmarshal(bz []byte) error {
	return amino.UnmarshalBinaryBare(bz, r)
}

// ResultsFromKeys returns the keys of the models.
func ResultsFromKeys(models []tokendist.Model) *ResultSet {
	return collect(models, func(m tokendist.Model) []byte { return m.Key })
}

// ResultsFromValues returns the values of the models.
func ResultsFromValues(models []tokendist.Model) *ResultSet {
	return collect(models, func(m tokendist.Model) []byte { return m.Value })
}

func collect(models []tokendist.Model, field func(tokendist.Model) []byte) *ResultSet {
	set := &ResultSet{Results: make([][]byte, len(models))}
	for i, m := range models {
		set.Results[i] = field(m)
	}
	return set
}

// JoinResults pairs the keys and the values of a query response back into
// models.
func JoinResults(keys, values *ResultSet) ([]tokendist.Model, error) {
	if len(keys.Results) != len(values.Results) {
		return nil, errors.Wrapf(errors.ErrInput, "%d keys but %d values", len(keys.Results), len(values.Results))
	}
	models := make([]tokendist.Model, len(keys.Results))
	for i, k := range keys.Results {
		models[i] = tokendist.Pair(k, values.Results[i])
	}
	return models, nil
}

// UnmarshalOneResult decodes the first entry of an encoded ResultSet into o.
// An empty set leaves o untouched.
func UnmarshalOneResult(bz []byte, o tokendist.Persistent) error {
	var res ResultSet
	if err := res.Unmarshal(bz); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if len(res.Results) == 0 {
		return nil
	}
	return o.Unmarshal(res.Results[0])
}
