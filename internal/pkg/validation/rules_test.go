package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSlug(t *testing.T) {
	assert.True(t, IsSlug("intro"))
	assert.True(t, IsSlug("sql-basics-2"))
	assert.False(t, IsSlug("Intro"))
	assert.False(t, IsSlug("double--hyphen"))
	assert.False(t, IsSlug("-leading"))
	assert.False(t, IsSlug(""))
}

func TestIsKey(t *testing.T) {
	assert.True(t, IsKey("sql"))
	assert.True(t, IsKey("power-bi"))
	assert.True(t, IsKey("Lesson_01"))
	assert.False(t, IsKey("has space"))
	assert.False(t, IsKey("_leading"))
}

func TestRegisterRules(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterRules(v))

	type payload struct {
		Slug string `validate:"slug"`
		Key  string `validate:"key"`
	}

	assert.NoError(t, v.Struct(payload{Slug: "intro", Key: "sql"}))
	assert.Error(t, v.Struct(payload{Slug: "Not A Slug", Key: "sql"}))
	assert.Error(t, v.Struct(payload{Slug: "intro", Key: "bad key"}))
}

func TestErrorsUseJSONNames(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterRules(v))

	type payload struct {
		CourseID string `json:"courseId" validate:"required"`
	}

	err := v.Struct(payload{})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "courseId", verrs[0].Field())
}
