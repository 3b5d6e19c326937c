package engine

import "github.com/fxamacker/cbor/v2"

// EncodeCBOR is the alternate binary diagnostics codec named in SPEC_FULL's
// domain stack: the CLI's --format cbor flag runs Result/Diagnostics
// through this instead of encoding/json.
func EncodeCBOR(v any) ([]byte, error) {
	return cbor.Marshal(v)
}
