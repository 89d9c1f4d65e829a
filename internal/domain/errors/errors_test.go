package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Constructors(t *testing.T) {
	err := NewAppError(http.StatusBadRequest, CodeInvalidInput, "bad", ErrInvalidInput)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, CodeInvalidInput, err.Code)
	assert.Equal(t, "bad", err.Message)
	assert.Equal(t, ErrInvalidInput.Error(), err.Error())

	notFound := NotFound("missing")
	assert.Equal(t, http.StatusNotFound, notFound.Status)
	assert.Equal(t, CodeNotFound, notFound.Code)

	conflict := Conflict("exists")
	assert.Equal(t, http.StatusConflict, conflict.Status)
	assert.Equal(t, CodeConflict, conflict.Code)

	internal := InternalError(stderrors.New("db down"))
	assert.Equal(t, http.StatusInternalServerError, internal.Status)
	assert.Equal(t, CodeInternalError, internal.Code)

	sigErr := SignatureInvalid("tampered")
	assert.Equal(t, http.StatusBadRequest, sigErr.Status)
	assert.Equal(t, CodeSignatureInvalid, sigErr.Code)
	assert.True(t, stderrors.Is(sigErr, ErrSignatureInvalid))
}

func TestChainCallError(t *testing.T) {
	inner := stderrors.New("execution reverted")
	err := NewChainCallError("mint", inner)

	var chainErr *ChainCallError
	assert.True(t, stderrors.As(err, &chainErr))
	assert.Equal(t, "mint", chainErr.Op)
	assert.True(t, stderrors.Is(err, inner))
	assert.Contains(t, err.Error(), "mint")

	assert.Nil(t, NewChainCallError("mint", nil))
}

func TestDistributionPartialError(t *testing.T) {
	err := &DistributionPartialError{Failed: []RecipientFailure{
		{RecipientID: "governance", Err: stderrors.New("timeout")},
		{RecipientID: "development", Err: stderrors.New("reverted")},
	}}
	assert.Contains(t, err.Error(), "2 recipients")
	assert.Contains(t, err.Error(), "governance: timeout")
	assert.Contains(t, err.Error(), "development: reverted")
}
