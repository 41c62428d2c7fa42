package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/validation"
)

// PatchBody is a JSON object kept undecoded per key, so an absent field
// can be told apart from an explicit null.
type PatchBody map[string]json.RawMessage

// ParsePatchBody decodes a request body that must be a JSON object.
func ParsePatchBody(data []byte) (PatchBody, error) {
	var b PatchBody
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, apperrors.NewValidationError("body", "request body must be a JSON object")
	}
	if b == nil {
		b = PatchBody{}
	}
	return b, nil
}

// Has reports whether key is present, null included.
func (b PatchBody) Has(key string) bool {
	_, ok := b[key]
	return ok
}

// IsNull reports whether key is present with a JSON null.
func (b PatchBody) IsNull(key string) bool {
	raw, ok := b[key]
	return ok && bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeField returns nil when key is absent or null.
func decodeField[T any](b PatchBody, key string) (*T, error) {
	if !b.Has(key) || b.IsNull(key) {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(b[key], &v); err != nil {
		return nil, apperrors.NewValidationError(key, fmt.Sprintf("%s has an invalid value", key))
	}
	return &v, nil
}

func nonEmptyString(b PatchBody, key string) (*string, error) {
	s, err := decodeField[string](b, key)
	if err != nil || s == nil {
		return s, err
	}
	if strings.TrimSpace(*s) == "" {
		return nil, apperrors.NewValidationError(key, key+" cannot be empty")
	}
	return s, nil
}

func slugField(b PatchBody, key string) (*string, error) {
	s, err := nonEmptyString(b, key)
	if err != nil || s == nil {
		return s, err
	}
	if !validation.IsSlug(*s) {
		return nil, apperrors.NewValidationError(key, key+" must be lowercase words separated by hyphens")
	}
	return s, nil
}

func nonNegativeInt(b PatchBody, key string) (*int, error) {
	n, err := decodeField[int](b, key)
	if err != nil || n == nil {
		return n, err
	}
	if *n < 0 {
		return nil, apperrors.NewValidationError(key, key+" must be at least 0")
	}
	return n, nil
}

// immutable rejects a key field whose body value differs from the addressed one.
func immutable[T comparable](b PatchBody, key string, current T) error {
	v, err := decodeField[T](b, key)
	if err != nil {
		return err
	}
	if v != nil && *v != current {
		return apperrors.NewValidationError(key, key+" cannot be changed")
	}
	return nil
}
