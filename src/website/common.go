package website

import (
	"errors"
	"net/http"
	"net/url"

	"git.nextdev.network/nextdev/nextdev/src/auth"
	"git.nextdev.network/nextdev/nextdev/src/config"
	"git.nextdev.network/nextdev/nextdev/src/db"
	"git.nextdev.network/nextdev/nextdev/src/logging"
	"git.nextdev.network/nextdev/nextdev/src/models"
	"git.nextdev.network/nextdev/nextdev/src/nddata"
	"git.nextdev.network/nextdev/nextdev/src/oops"
)

func loadCommonData(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		b := c.Perf.StartBlock("MIDDLEWARE", "Load common website data")
		{
			sessionCookie, err := c.Req.Cookie(auth.SessionCookieName)
			if err == nil {
				user, err := getCurrentUser(c, sessionCookie.Value)
				if err != nil {
					return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to get current user"))
				}

				c.CurrentUser = user
			}
			// http.ErrNoCookie is the only error Cookie ever returns, so no further handling to do here.
		}
		b.End()

		return h(c)
	}
}

// Given a session token, fetches user data from the database. Will return
// nil if the session is no good or the user cannot be found, and will only
// return an error if it's serious.
func getCurrentUser(c *RequestContext, token string) (*models.User, error) {
	username, ok := c.Sessions.Verify(token)
	if !ok {
		return nil, nil
	}

	user, err := nddata.FetchUserByUsername(c, c.Conn, username)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			logging.Debug().Str("username", username).Msg("returning no current user for this request because the user for the session couldn't be found")
			return nil, nil // user was deleted or something
		}
		return nil, oops.New(err, "failed to get user for session")
	}

	return user, nil
}

func addCORSHeaders(c *RequestContext, res *ResponseData) {
	parsed, err := url.Parse(config.Config.BaseUrl)
	if err != nil {
		c.Logger.Error().Str("Config.BaseUrl", config.Config.BaseUrl).Msg("Config.BaseUrl cannot be parsed. Skipping CORS headers")
		return
	}
	origin := parsed.Scheme + "://" + parsed.Host
	res.Header().Set("Access-Control-Allow-Origin", origin)
	res.Header().Set("Access-Control-Allow-Credentials", "true")
	res.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	res.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func corsMiddleware(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		if c.Req.Method == http.MethodOptions {
			res := ResponseData{StatusCode: http.StatusNoContent}
			addCORSHeaders(c, &res)
			return res
		}

		res := h(c)
		addCORSHeaders(c, &res)
		return res
	}
}
