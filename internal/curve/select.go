package curve

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"poolScope/internal/model"
)

type envelope struct {
	Data *struct {
		PoolData json.RawMessage `json:"poolData"`
	} `json:"data"`
}

// SelectPool returns the first record in data.poolData whose name equals name exactly.
// Later duplicates are ignored.
func SelectPool(doc *Document, name string) (model.PoolRecord, error) {
	if doc == nil {
		return model.PoolRecord{}, fmt.Errorf("%w: empty document", ErrMalformedResponse)
	}

	var env envelope
	if err := jsonit.Unmarshal(doc.raw, &env); err != nil {
		return model.PoolRecord{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if env.Data == nil {
		return model.PoolRecord{}, fmt.Errorf("%w: missing data", ErrMalformedResponse)
	}
	poolData := bytes.TrimSpace(env.Data.PoolData)
	if len(poolData) == 0 || poolData[0] != '[' {
		return model.PoolRecord{}, fmt.Errorf("%w: data.poolData is not an array", ErrMalformedResponse)
	}

	var records []json.RawMessage
	if err := jsonit.Unmarshal(poolData, &records); err != nil {
		return model.PoolRecord{}, fmt.Errorf("%w: data.poolData: %v", ErrMalformedResponse, err)
	}

	for i, raw := range records {
		nameField := jsonit.Get(raw, "name")
		if nameField.ValueType() != jsoniter.StringValue || nameField.ToString() != name {
			continue
		}

		var record model.PoolRecord
		if err := jsonit.Unmarshal(raw, &record); err != nil {
			return model.PoolRecord{}, fmt.Errorf("%w: data.poolData[%d]: %v", ErrMalformedResponse, i, err)
		}
		return record, nil
	}

	return model.PoolRecord{}, &NotFoundError{Name: name, Pools: len(records)}
}
