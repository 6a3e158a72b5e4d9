package website

import (
	"errors"
	"net/http"
	"regexp"

	"git.nextdev.network/nextdev/nextdev/src/auth"
	"git.nextdev.network/nextdev/nextdev/src/db"
	"git.nextdev.network/nextdev/nextdev/src/models"
	"git.nextdev.network/nextdev/nextdev/src/nddata"
	"git.nextdev.network/nextdev/nextdev/src/oops"
)

var REUsername = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

func Register(c *RequestContext) ResponseData {
	form, err := c.GetFormValues()
	if err != nil {
		return c.RejectRequest(http.StatusBadRequest, "bad form data")
	}
	username := form.Get("username")
	password := form.Get("password")

	if username == "" || password == "" {
		return c.RejectRequest(http.StatusBadRequest, "missing credentials")
	}
	if len(username) >= 25 {
		return c.RejectRequest(http.StatusBadRequest, "username must be shorter than 25 characters")
	}
	if !REUsername.MatchString(username) {
		return c.RejectRequest(http.StatusBadRequest, "username may only contain letters, numbers, and underscores")
	}
	if len(password) <= 8 {
		return c.RejectRequest(http.StatusBadRequest, "password must be longer than 8 characters")
	}
	if len(password) >= 20 {
		return c.RejectRequest(http.StatusBadRequest, "password must be shorter than 20 characters")
	}

	exists, err := nddata.UserExists(c, c.Conn, username)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	if exists {
		return c.RejectRequest(http.StatusBadRequest, "a user with this username already exists")
	}

	hashed := auth.HashPassword(password)
	user, err := nddata.CreateUser(c, c.Conn, username, hashed.String(), models.RoleUser)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var res ResponseData
	res.SetCookie(auth.NewSessionCookie(c.Sessions.Issue(user.Username)))
	res.WriteJson(map[string]string{
		"status":  "ok",
		"message": "registered successfully",
	}, c.Perf)
	return res
}

func Login(c *RequestContext) ResponseData {
	form, err := c.GetFormValues()
	if err != nil {
		return c.RejectRequest(http.StatusBadRequest, "bad form data")
	}
	username := form.Get("username")
	password := form.Get("password")

	if username == "" || password == "" {
		return c.RejectRequest(http.StatusBadRequest, "missing credentials")
	}

	user, err := nddata.FetchUserByUsername(c, c.Conn, username)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return c.RejectRequest(http.StatusUnauthorized, "invalid credentials")
		}
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	hashed, err := auth.ParsePasswordString(user.Password)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to parse password for user"))
	}
	ok, err := auth.CheckPassword(password, hashed)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to check password"))
	}
	if !ok {
		return c.RejectRequest(http.StatusUnauthorized, "invalid credentials")
	}

	var res ResponseData
	res.SetCookie(auth.NewSessionCookie(c.Sessions.Issue(user.Username)))
	res.WriteJson(map[string]string{
		"status":  "ok",
		"message": "logged in successfully",
	}, c.Perf)
	return res
}

func Logout(c *RequestContext) ResponseData {
	var res ResponseData
	res.SetCookie(auth.DeleteSessionCookie)
	res.WriteJson(map[string]string{"status": "ok"}, c.Perf)
	return res
}

func Me(c *RequestContext) ResponseData {
	var res ResponseData
	res.WriteJson(map[string]any{
		"id":       c.CurrentUser.ID,
		"username": c.CurrentUser.Username,
		"role":     c.CurrentUser.Role.String(),
	}, c.Perf)
	return res
}
