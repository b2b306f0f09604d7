package response

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBusinessError(t *testing.T) {
	cause := errors.New("store down")
	err := NewBusinessError(
		WithErrorCode(AccessUnverified),
		WithErrorMessage("unable to verify access, try again"),
		WithError(cause),
	)

	assert.Equal(t, AccessUnverified, err.Code)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "unable to verify access, try again: store down", err.Error())

	def := NewBusinessError()
	assert.Equal(t, Fail, def.Code)
	assert.Equal(t, "business error", def.Error())
}

func TestFromError(t *testing.T) {
	res := FromError(NewBusinessError(
		WithErrorCode(ModerationRejected),
		WithErrorMessage("rejected"),
		WithErrorData(map[string]bool{"allowed": false}),
	))

	assert.Equal(t, ModerationRejected, res.Code)
	assert.Equal(t, "rejected", res.Message)
	assert.Equal(t, map[string]bool{"allowed": false}, res.Data)

	ok := SuccessResponse("x")
	assert.Equal(t, Success, ok.Code)
}
