package handlers

import (
	"errors"
	"net/http"

	"carebook/database"
	requestsRepo "carebook/database/repository/requests"
	"carebook/services/dial"
	"carebook/services/recurrence"
	"carebook/services/session"
	"carebook/services/tracking"
	"carebook/services/wizard"
	"carebook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError logs err and writes the matching status and error body.
func respondError(c *gin.Context, err error) {
	logger := getLogger(c)

	var verr *wizard.ValidationError
	var serr *wizard.SubmitError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, utils.ErrorResponse{
			Message: verr.Message,
			Details: verr.Error(),
			Kind:    utils.KindValidation,
			Field:   verr.Field,
		})
	case errors.Is(err, wizard.ErrLocationRequired):
		c.JSON(http.StatusConflict, utils.ErrorResponse{
			Message: err.Error(),
			Details: wizard.LocationLink,
			Kind:    utils.KindPrecondition,
		})
	case errors.As(err, &serr):
		logger.Error("Submission failed", zap.String("category", serr.Category), zap.Error(serr.Err))
		c.JSON(http.StatusBadGateway, utils.ErrorResponse{
			Message: serr.Message(),
			Kind:    utils.KindTransient,
		})
	case errors.Is(err, wizard.ErrSubmitInFlight), errors.Is(err, session.ErrDraftContended),
		errors.Is(err, requestsRepo.ErrAlreadyAssigned):
		c.JSON(http.StatusConflict, utils.ErrorResponse{Message: err.Error(), Kind: utils.KindPrecondition})
	case errors.Is(err, tracking.ErrNotTrackable):
		c.JSON(http.StatusConflict, utils.ErrorResponse{Message: err.Error(), Kind: utils.KindPrecondition})
	case errors.Is(err, session.ErrDraftNotFound), errors.Is(err, wizard.ErrDraftClosed), errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, utils.ErrorResponse{Message: "Not found", Details: err.Error(), Kind: utils.KindNotFound})
	case errors.Is(err, wizard.ErrNotOwner), errors.Is(err, database.ErrForbidden),
		errors.Is(err, tracking.ErrNotAssigned), errors.Is(err, tracking.ErrScopeForbidden):
		c.JSON(http.StatusForbidden, utils.ErrorResponse{Message: "Forbidden", Details: err.Error()})
	case errors.Is(err, wizard.ErrUnknownDial), errors.Is(err, dial.ErrUnknownPhase),
		errors.Is(err, recurrence.ErrInvalidPattern), errors.Is(err, errBadInput):
		c.JSON(http.StatusBadRequest, utils.ErrorResponse{Message: "Invalid request", Details: err.Error()})
	default:
		logger.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse{
			Message: "Internal Server Error",
			Details: "An unexpected error occurred. Please try again later.",
			Kind:    utils.KindInternal,
		})
	}
}

var errBadInput = errors.New("invalid input")

// userID returns the caller set by the auth middleware.
func userID(c *gin.Context) (string, bool) {
	id := c.GetString("userID")
	if id == "" {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "User not authenticated"})
		return "", false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		getLogger(c).Debug("Invalid request payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, utils.ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return false
	}
	return true
}
