// Package storage implements the slot gateway: a string-keyed store of JSON
// values with localStorage semantics. A slot holds one whole value; writers
// always replace the full value (last write wins), readers fall back instead
// of failing when a slot is missing or unparsable.
package storage

// Slot keys. The survey slot holds the single active definition or an
// explicit null marker; the response and draft slots hold ordered lists.
const (
	KeySurvey    = "anketbox:survey"
	KeyResponses = "anketbox:responses"
	KeyDrafts    = "anketbox:drafts"
)

// Gateway is the persistence contract. Get decodes the slot value into out
// and reports whether a usable value was present; missing keys, null markers
// and corrupt content all return false and leave out untouched. Set encodes v
// and replaces the slot, reporting failure to the caller.
type Gateway interface {
	Get(key string, out any) bool
	Set(key string, v any) error
}
