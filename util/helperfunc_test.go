package util

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func runHandler(handler gin.HandlerFunc) (*httptest.ResponseRecorder, APIResponse) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handler(c)

	var resp APIResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestCallHelpers_StatusCodes(t *testing.T) {
	cases := []struct {
		name   string
		call   gin.HandlerFunc
		status int
	}{
		{"user error", func(c *gin.Context) { CallUserError(c, APIErrorParams{Msg: "bad"}) }, http.StatusBadRequest},
		{"not found", func(c *gin.Context) { CallErrorNotFound(c, APIErrorParams{Msg: "missing"}) }, http.StatusNotFound},
		{"conflict", func(c *gin.Context) { CallErrorConflict(c, APIErrorParams{Msg: "taken"}) }, http.StatusConflict},
		{"unauthorized", func(c *gin.Context) { CallUserNotAuthorized(c, APIErrorParams{Msg: "no"}) }, http.StatusUnauthorized},
		{"forbidden", func(c *gin.Context) { CallForbidden(c, APIErrorParams{Msg: "denied"}) }, http.StatusForbidden},
		{"server error", func(c *gin.Context) { CallServerError(c, APIErrorParams{Msg: "boom"}) }, http.StatusInternalServerError},
		{"ok", func(c *gin.Context) { CallSuccessOK(c, APISuccessParams{Msg: "done"}) }, http.StatusOK},
		{"created", func(c *gin.Context) { CallSuccessCreated(c, APISuccessParams{Msg: "made"}) }, http.StatusCreated},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, resp := runHandler(tc.call)
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.status < 400, resp.Success)
		})
	}
}

func TestErrorResponse_FallsBackToErr(t *testing.T) {
	_, resp := runHandler(func(c *gin.Context) {
		CallUserError(c, APIErrorParams{Err: assert.AnError})
	})
	assert.Equal(t, assert.AnError.Error(), resp.Message)
}

func TestErrorResponse_CarriesErrorsList(t *testing.T) {
	_, resp := runHandler(func(c *gin.Context) {
		CallUserError(c, APIErrorParams{Msg: "Invalid data", Errors: []string{"name is required", "price must be greater than zero"}})
	})
	assert.Len(t, resp.Errors, 2)
}

func TestContains(t *testing.T) {
	list := []string{"user", "professional"}
	assert.True(t, Contains("user", list))
	assert.False(t, Contains("admin", list))
	assert.False(t, Contains("user", nil))
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"  Maria  Jose ":   "Maria Jose",
		"Maria":            "Maria",
		"":                 "",
		"   ":              "",
		"Dental\tcleaning": "Dental cleaning",
		"a    b      c":    "a b c",
	}
	for input, want := range cases {
		assert.Equal(t, want, NormalizeName(input), "input %q", input)
	}
}
