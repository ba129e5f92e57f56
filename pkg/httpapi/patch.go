package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

const (
	CodeInvalidPatch = "INVALID_PATCH"
	maxPatchSize     = 1 << 20
)

// MergePatch applies the request body as an RFC 7386 merge patch to the
// JSON form of current and decodes the result into target. Fields that
// target does not know are rejected.
func MergePatch(r *http.Request, current any, target any) error {
	patch, err := ReadBody(r, maxPatchSize)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(patch)) == 0 {
		return serrors.BadRequest(CodeInvalidPatch, "patch body is empty")
	}
	doc, err := json.Marshal(current)
	if err != nil {
		return err
	}
	merged, err := jsonpatch.MergePatch(doc, patch)
	if err != nil {
		return serrors.BadRequest(CodeInvalidPatch, "invalid merge patch: "+err.Error())
	}
	dec := json.NewDecoder(bytes.NewReader(merged))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return serrors.BadRequest(CodeInvalidPatch, "patched document is invalid: "+err.Error())
	}
	return nil
}
