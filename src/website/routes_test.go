package website

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLogContextErrors(t *testing.T) {
	err1 := errors.New("test error 1")
	err2 := errors.New("test error 2")

	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	logger.Print("sanity check")

	assert.Contains(t, buf.String(), "sanity check")

	router := &Router{}
	routes := RouteBuilder{
		Router: router,
		Middlewares: []Middleware{
			func(h Handler) Handler {
				return func(c *RequestContext) (res ResponseData) {
					c.Logger = &logger
					return h(c)
				}
			},
			logContextErrorsMiddleware,
		},
	}

	routes.GET(regexp.MustCompile("^/test$"), func(c *RequestContext) ResponseData {
		return c.ErrorResponse(http.StatusInternalServerError, err1, err2)
	})

	srv := httptest.NewServer(router)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/test")
	if assert.Nil(t, err) {
		defer res.Body.Close()

		t.Logf("Log contents: %s", buf.String())

		assert.Equal(t, http.StatusInternalServerError, res.StatusCode)

		assert.Contains(t, buf.String(), err1.Error())
		assert.Contains(t, buf.String(), err2.Error())
	}
}

func TestErrorBodies(t *testing.T) {
	logger := zerolog.Nop()

	router := &Router{}
	routes := RouteBuilder{
		Router: router,
		Middlewares: []Middleware{
			func(h Handler) Handler {
				return func(c *RequestContext) (res ResponseData) {
					c.Logger = &logger
					return h(c)
				}
			},
		},
	}

	routes.GET(regexp.MustCompile("^/reject$"), func(c *RequestContext) ResponseData {
		return c.RejectRequest(http.StatusBadRequest, "title is too long")
	})
	routes.GET(regexp.MustCompile("^/error$"), func(c *RequestContext) ResponseData {
		return c.ErrorResponse(http.StatusInternalServerError, errors.New("secret database detail"))
	})

	srv := httptest.NewServer(router)
	defer srv.Close()

	t.Run("rejection reason is visible", func(t *testing.T) {
		res, err := http.Get(srv.URL + "/reject")
		if assert.Nil(t, err) {
			defer res.Body.Close()
			assert.Equal(t, http.StatusBadRequest, res.StatusCode)
			assert.Equal(t, "title is too long", detailOf(t, res.Body))
		}
	})
	t.Run("internal errors are not leaked", func(t *testing.T) {
		res, err := http.Get(srv.URL + "/error")
		if assert.Nil(t, err) {
			defer res.Body.Close()
			assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
			assert.Equal(t, http.StatusText(http.StatusInternalServerError), detailOf(t, res.Body))
		}
	})
}

func TestRouteMatching(t *testing.T) {
	logger := zerolog.Nop()

	router := &Router{}
	routes := RouteBuilder{
		Router: router,
		Middlewares: []Middleware{
			func(h Handler) Handler {
				return func(c *RequestContext) (res ResponseData) {
					c.Logger = &logger
					return h(c)
				}
			},
		},
	}

	routes.GET(regexp.MustCompile(`^/posts/(?P<id>\d+)$`), func(c *RequestContext) ResponseData {
		var res ResponseData
		res.WriteJson(map[string]any{"id": c.PathParamInt("id")}, nil)
		return res
	})
	routes.POST(regexp.MustCompile(`^/posts/(?P<id>\d+)$`), func(c *RequestContext) ResponseData {
		var res ResponseData
		res.WriteJson(map[string]any{"method": "post"}, nil)
		return res
	})
	routes.AnyMethod(regexp.MustCompile("^/"), FourOhFour)

	srv := httptest.NewServer(router)
	defer srv.Close()

	t.Run("path params", func(t *testing.T) {
		res, err := http.Get(srv.URL + "/posts/42")
		if assert.Nil(t, err) {
			defer res.Body.Close()
			assert.Equal(t, http.StatusOK, res.StatusCode)
			body, _ := io.ReadAll(res.Body)
			assert.JSONEq(t, `{"id": 42}`, string(body))
		}
	})
	t.Run("method matters", func(t *testing.T) {
		res, err := http.Post(srv.URL+"/posts/42", "application/json", nil)
		if assert.Nil(t, err) {
			defer res.Body.Close()
			body, _ := io.ReadAll(res.Body)
			assert.JSONEq(t, `{"method": "post"}`, string(body))
		}
	})
	t.Run("fallback route", func(t *testing.T) {
		res, err := http.Get(srv.URL + "/posts/not-a-number")
		if assert.Nil(t, err) {
			defer res.Body.Close()
			assert.Equal(t, http.StatusNotFound, res.StatusCode)
		}
	})
}

func detailOf(t *testing.T, r io.Reader) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	err := json.NewDecoder(r).Decode(&body)
	assert.Nil(t, err)
	return body.Detail
}
