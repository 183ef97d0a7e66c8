package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerForm struct {
	Name     string `validate:"required,min=3,max=50,personname"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6,max=64,password"`
}

type packageForm struct {
	Name string `validate:"required,letters"`
}

func TestPassword(t *testing.T) {
	assert.True(t, Password("Secret1!"))
	assert.False(t, Password("secret1!"), "no upper-case letter")
	assert.False(t, Password("Secret!!"), "no digit")
	assert.False(t, Password("Secret11"), "no symbol")
	assert.False(t, Password("Secret1?"), "symbol outside the allowed set")
}

func TestNames(t *testing.T) {
	assert.True(t, Letters("Gold"))
	assert.False(t, Letters("Gold Plus"))
	assert.False(t, Letters("Gold1"))
	assert.False(t, Letters(""))

	assert.True(t, PersonName("Mary-Jane O'Neil"))
	assert.False(t, PersonName("R2D2"))
}

func TestNew_CustomTags(t *testing.T) {
	v := New()

	require.NoError(t, v.Struct(registerForm{Name: "Ada Lovelace", Email: "ada@x.com", Password: "Secret1!"}))

	err := v.Struct(registerForm{Name: "Ada", Email: "ada@x.com", Password: "secret11"})
	require.Error(t, err)
	assert.Equal(t, "Password must contain at least one uppercase letter, one number, and one special character", Message(err))

	err = v.Struct(packageForm{Name: "Gold Plus"})
	require.Error(t, err)
	assert.Equal(t, "Name must contain only letters (no spaces or symbols)", Message(err))
}

func TestMessages(t *testing.T) {
	err := New().Struct(registerForm{})
	msgs := Messages(err)
	assert.Len(t, msgs, 3)
	assert.Equal(t, "Name is required", msgs[0])

	assert.Equal(t, "boom", Message(errors.New("boom")))
}
