package server

import (
	"encoding/json"

	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/errors"
	"github.com/iov-one/tokendist/store"
)

// ValidateGenesis loads the app_state of each genesis file into a throwaway
// store, so that a broken genesis is found before the chain starts.
func ValidateGenesis(ini tokendist.Initializer, genesisPaths []string) error {
	for _, path := range genesisPaths {
		if err := validateGenesis(ini, path); err != nil {
			return errors.Wrap(err, path)
		}
	}
	return nil
}

func validateGenesis(ini tokendist.Initializer, genesisPath string) error {
	doc, err := loadGenesis(genesisPath)
	if err != nil {
		return err
	}
	var state tokendist.Options
	if raw, ok := doc[appStateKey]; ok {
		if err := json.Unmarshal(raw, &state); err != nil {
			return errors.Wrap(errors.ErrInput, err.Error())
		}
	}
	if err := ini.FromGenesis(state, store.MemStore()); err != nil {
		return errors.Wrap(err, "cannot initialize from genesis")
	}
	return nil
}
