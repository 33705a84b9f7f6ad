package abiproj

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var errSingleEntry = errors.New("expected exactly one ABI entry")

func parse(entries []Entry) (abi.ABI, error) {
	if len(entries) != 1 {
		return abi.ABI{}, errSingleEntry
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("encode abi: %w", err)
	}
	parsed, err := abi.JSON(bytes.NewReader(data))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("decode abi: %w", err)
	}
	return parsed, nil
}

// Signature returns the canonical signature, e.g. `transfer(address,uint256)`.
func Signature(entries []Entry) (string, error) {
	parsed, err := parse(entries)
	if err != nil {
		return "", err
	}
	for _, m := range parsed.Methods {
		return m.Sig, nil
	}
	for _, e := range parsed.Events {
		return e.Sig, nil
	}
	return "", fmt.Errorf("%s entry has no signature", entries[0].Type)
}

// Selector returns the 4-byte selector of a single function entry.
// Constructors, fallback and receive functions have none.
func Selector(entries []Entry) ([]byte, error) {
	parsed, err := parse(entries)
	if err != nil {
		return nil, err
	}
	for _, m := range parsed.Methods {
		if len(m.ID) == 0 {
			break
		}
		return m.ID, nil
	}
	return nil, fmt.Errorf("%s entry has no selector", entries[0].Type)
}

// EventTopic returns topic 0 of a single event entry.
func EventTopic(entries []Entry) (common.Hash, error) {
	parsed, err := parse(entries)
	if err != nil {
		return common.Hash{}, err
	}
	for _, e := range parsed.Events {
		return e.ID, nil
	}
	return common.Hash{}, fmt.Errorf("%s entry is not an event", entries[0].Type)
}

// IsSameFunction reports whether a and b, each a single function entry,
// have equal selectors. Entries without a selector never match.
func IsSameFunction(a, b []Entry) bool {
	sa, err := Selector(a)
	if err != nil {
		return false
	}
	sb, err := Selector(b)
	if err != nil {
		return false
	}
	return bytes.Equal(sa, sb)
}
