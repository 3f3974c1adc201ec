package validation

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Code     string `json:"code" binding:"omitempty,otp"`
}

func validate(t *testing.T, v sample) error {
	t.Helper()
	Init()
	return binding.Validator.ValidateStruct(&v)
}

func TestValidAcceptsGoodInput(t *testing.T) {
	err := validate(t, sample{Email: "a@x.com", Password: "pw123456", Code: "482913"})
	require.NoError(t, err)
}

func TestDetailsUseJSONNames(t *testing.T) {
	err := validate(t, sample{Email: "nope", Password: "short"})
	require.Error(t, err)

	details := ToDetails(err)
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
}

func TestOTPAlias(t *testing.T) {
	err := validate(t, sample{Email: "a@x.com", Password: "pw123456", Code: "12ab56"})
	require.Error(t, err)

	details := ToDetails(err)
	assert.Equal(t, "must be a 6-digit code", details["code"])
}

func TestToDetailsNil(t *testing.T) {
	assert.Nil(t, ToDetails(nil))
}
