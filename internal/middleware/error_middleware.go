package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/alunos/internal/app/models/dto"
	"github.com/yigit/alunos/internal/pkg/apperrors"
	"github.com/yigit/alunos/internal/pkg/logger"
)

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, detail := errorResponse(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.FullPath()).Int("status", status).Msg("Request failed")
	}
	c.JSON(status, dto.NewAPIErrorResponse(detail))
}

func errorResponse(err error) (int, *dto.ErrorDetail) {
	var validationErr *apperrors.ValidationError
	var conflictErr *apperrors.ConflictError
	var transportErr *apperrors.TransportError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, validationErr.Message).
			WithField(validationErr.Field)
	case errors.As(err, &conflictErr):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeConflict, conflictMessage(conflictErr.Field)).
			WithField(conflictErr.Field).
			WithDetails(conflictErr.Detail)
	case errors.As(err, &transportErr):
		return http.StatusBadGateway, dto.NewErrorDetail(dto.ErrorCodeDatabaseError, transportErr.Error())
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Resource not found")
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrTokenNotFound):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeTokenNotFound, "Token not found")
	case errors.Is(err, apperrors.ErrTokenRevoked):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Token revoked")
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Email already exists").
			WithField("email")
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeResourceInvalid, err.Error())
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}

func conflictMessage(field string) string {
	if msg, ok := apperrors.ConflictMessage(field); ok {
		return msg
	}
	return "Registro duplicado"
}
