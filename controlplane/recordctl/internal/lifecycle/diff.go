package lifecycle

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"github.com/malbeclabs/recordctl/smartcontract/sdk/go/record"
)

// applyWrite returns the record the account will hold after payload is written at offset over
// current. Bytes past the end of the record are dropped, as the program would reject them anyway.
func applyWrite(current record.Record, payload []byte, offset uint32) (record.Record, error) {
	data, err := record.Encode(current)
	if err != nil {
		return nil, err
	}
	if int(offset) < len(data) {
		copy(data[offset:], payload)
	}
	next, err := record.NewRecord(current.Kind())
	if err != nil {
		return nil, err
	}
	if err := record.Decode(data, next); err != nil {
		return nil, err
	}
	return next, nil
}

// diffRecords renders a unified diff of the JSON form of two records, or an empty string when they
// are equal.
func diffRecords(name string, a, b record.Record) (string, error) {
	if reflect.DeepEqual(a, b) {
		return "", nil
	}
	oldJSON, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal current record: %w", err)
	}
	newJSON, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal new record: %w", err)
	}

	edits := myers.ComputeEdits(span.URIFromPath("onchain/"+name), string(oldJSON)+"\n", string(newJSON)+"\n")
	return fmt.Sprint(gotextdiff.ToUnified("onchain/"+name, "new/"+name, string(oldJSON)+"\n", edits)), nil
}
