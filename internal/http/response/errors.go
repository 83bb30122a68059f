package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/angelo-odois/postangelo-sub000/internal/content"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/apierr"
)

// RespondAPIError writes err using the status and code it carries. Document validation failures
// also report where the problems are. Internal errors never leak their message.
func RespondAPIError(c *gin.Context, err error) {
	ae := apierr.From(err)
	_ = c.Error(err)
	env := ErrorEnvelope{Error: APIError{Message: ae.Error(), Code: ae.Code}}
	if ae.Status >= http.StatusInternalServerError {
		env.Error.Message = http.StatusText(ae.Status)
	}
	for _, ve := range content.ValidationErrors(err) {
		if env.Error.Path == "" {
			env.Error.Path = ve.Path
		}
		env.Error.Details = append(env.Error.Details, ErrorDetail{Path: ve.Path, Reason: ve.Reason})
	}
	c.AbortWithStatusJSON(ae.Status, env)
}
