package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/ytgrab-go/internal/domain"
)

// StatusForKind maps an error kind to its HTTP status
func StatusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindEngineResolution:
		return http.StatusUnprocessableEntity
	case domain.KindEngineProcess, domain.KindArtifactMissing:
		return http.StatusBadGateway
	case domain.KindEngineTimeout:
		return http.StatusGatewayTimeout
	case domain.KindEngineUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {success:false, message} with the mapped status.
// Raw engine detail is added as "error" only when exposeDetail is set.
func respondError(c *gin.Context, err error, exposeDetail bool) {
	kind := domain.KindOf(err)
	body := gin.H{
		"success": false,
		"message": domain.UserMessage(kind),
	}
	if exposeDetail {
		if detail := domain.DetailOf(err); detail != "" {
			body["error"] = detail
		}
	}
	c.JSON(StatusForKind(kind), body)
}
