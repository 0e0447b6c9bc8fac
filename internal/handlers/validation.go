package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "github.com/medvault/medvault/pkg/errors"
	"github.com/medvault/medvault/pkg/response"
	"github.com/medvault/medvault/pkg/validator"
)

// bindAndValidate decodes the JSON body into T and runs struct validation.
// On failure it writes the error response and returns false.
func bindAndValidate[T any](c *gin.Context) (T, bool) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.NewBadRequest("Invalid request payload"))
		return req, false
	}

	if err := validator.ValidateStruct(req); err != nil {
		var failures validator.ValidationErrors
		if errors.As(err, &failures) {
			response.Error(c, apperrors.NewBadRequest(failures.Error()))
		} else {
			response.Error(c, apperrors.NewBadRequest("Invalid request payload"))
		}
		return req, false
	}

	return req, true
}
