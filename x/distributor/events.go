package distributor

import (
	"encoding/hex"
	"strings"

	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/coin"
	"github.com/iov-one/tokendist/errors"
	"github.com/tendermint/tendermint/libs/common"
)

// Tag keys of the events emitted by this extension. The value of the
// first tag of every event is the distributor ID in hex.
const (
	TagCreated     = "distributor.created"
	TagAddress     = "distributor.address"
	TagCreator     = "distributor.creator"
	TagExecuted    = "distributor.executed"
	TagAsset       = "distributor.asset"
	TagDistributed = "distributor.distributed"
	TagFee         = "distributor.fee"
	TagWithdrawn   = "distributor.withdrawn"
	TagAmount      = "distributor.amount"
	TagTransferred = "distributor.transferred"
	TagOwner       = "distributor.owner"
)

// CreatedEvent is emitted when a distributor is created.
type CreatedEvent struct {
	ID      []byte
	Address tokendist.Address
	Creator tokendist.Address
}

// Tags returns the event as ABCI tags.
func (e CreatedEvent) Tags() []common.KVPair {
	return []common.KVPair{
		tokendist.Tag(TagCreated, FormatID(e.ID)),
		tokendist.Tag(TagAddress, e.Address.String()),
		tokendist.Tag(TagCreator, e.Creator.String()),
	}
}

// ParseCreatedEvent reads a CreatedEvent back from the tags of a
// transaction result. It returns ErrNotFound when no such event was emitted.
func ParseCreatedEvent(tags []common.KVPair) (*CreatedEvent, error) {
	raw, ok := tokendist.TagValue(tags, TagCreated)
	if !ok {
		return nil, errors.Wrap(errors.ErrNotFound, "no created event")
	}
	var (
		e   CreatedEvent
		err error
	)
	if e.ID, err = ParseID(raw); err != nil {
		return nil, err
	}
	if e.Address, err = parseAddressTag(tags, TagAddress); err != nil {
		return nil, err
	}
	if e.Creator, err = parseAddressTag(tags, TagCreator); err != nil {
		return nil, err
	}
	return &e, nil
}

// ExecutedEvent is emitted when a payout succeeds.
type ExecutedEvent struct {
	ID          []byte
	Asset       tokendist.Address
	Distributed coin.Amount
	Fee         coin.Amount
}

// Tags returns the event as ABCI tags.
func (e ExecutedEvent) Tags() []common.KVPair {
	return []common.KVPair{
		tokendist.Tag(TagExecuted, FormatID(e.ID)),
		tokendist.Tag(TagAsset, e.Asset.String()),
		tokendist.Tag(TagDistributed, e.Distributed.String()),
		tokendist.Tag(TagFee, e.Fee.String()),
	}
}

// ParseExecutedEvent reads an ExecutedEvent back from the tags of a
// transaction result. It returns ErrNotFound when no such event was emitted.
func ParseExecutedEvent(tags []common.KVPair) (*ExecutedEvent, error) {
	raw, ok := tokendist.TagValue(tags, TagExecuted)
	if !ok {
		return nil, errors.Wrap(errors.ErrNotFound, "no executed event")
	}
	var (
		e   ExecutedEvent
		err error
	)
	if e.ID, err = ParseID(raw); err != nil {
		return nil, err
	}
	if e.Asset, err = parseAddressTag(tags, TagAsset); err != nil {
		return nil, err
	}
	if e.Distributed, err = parseAmountTag(tags, TagDistributed); err != nil {
		return nil, err
	}
	if e.Fee, err = parseAmountTag(tags, TagFee); err != nil {
		return nil, err
	}
	return &e, nil
}

func withdrawnTags(id []byte, asset tokendist.Address, amount coin.Amount) []common.KVPair {
	return []common.KVPair{
		tokendist.Tag(TagWithdrawn, FormatID(id)),
		tokendist.Tag(TagAsset, asset.String()),
		tokendist.Tag(TagAmount, amount.String()),
	}
}

func ownershipTags(id []byte, owner tokendist.Address) []common.KVPair {
	return []common.KVPair{
		tokendist.Tag(TagTransferred, FormatID(id)),
		tokendist.Tag(TagOwner, owner.String()),
	}
}

// FormatID returns the hex form of a distributor ID, as used in events and
// on the command line.
func FormatID(id []byte) string {
	return strings.ToUpper(hex.EncodeToString(id))
}

// ParseID is the inverse of FormatID.
func ParseID(raw string) ([]byte, error) {
	id, err := hex.DecodeString(raw)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "id %q", raw)
	}
	return id, validateID(id)
}

func parseAddressTag(tags []common.KVPair, key string) (tokendist.Address, error) {
	raw, ok := tokendist.TagValue(tags, key)
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "tag %s", key)
	}
	addr, err := tokendist.ParseAddress(raw)
	if err != nil {
		return nil, errors.Wrap(err, key)
	}
	return addr, nil
}

func parseAmountTag(tags []common.KVPair, key string) (coin.Amount, error) {
	raw, ok := tokendist.TagValue(tags, key)
	if !ok {
		return coin.Amount{}, errors.Wrapf(errors.ErrNotFound, "tag %s", key)
	}
	a, err := coin.ParseAmount(raw)
	if err != nil {
		return coin.Amount{}, errors.Wrap(err, key)
	}
	return a, nil
}
