package website

import (
	"errors"
	"net/http"

	"git.nextdev.network/nextdev/nextdev/src/perms"
)

func FourOhFour(c *RequestContext) ResponseData {
	return c.RejectRequest(http.StatusNotFound, "not found")
}

// Turns a decision from the perms package into the right kind of rejection:
// role failures are 403s, state failures are 400s. Anything else is a bug in
// the caller.
func rejectPermissionError(c *RequestContext, err error) ResponseData {
	var denied *perms.DeniedError
	if errors.As(err, &denied) {
		return c.RejectRequest(http.StatusForbidden, denied.Reason)
	}
	var state *perms.StateError
	if errors.As(err, &state) {
		return c.RejectRequest(http.StatusBadRequest, state.Reason)
	}
	return c.ErrorResponse(http.StatusInternalServerError, err)
}
