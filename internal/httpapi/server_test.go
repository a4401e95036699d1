package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func testContext(t *testing.T, target string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestPageParamsDefaults(t *testing.T) {
	t.Parallel()

	c, _ := testContext(t, "/api/events")
	limit, offset := pageParams(c)
	if limit != defaultPageLimit {
		t.Fatalf("limit = %d, want %d", limit, defaultPageLimit)
	}
	if offset != 0 {
		t.Fatalf("offset = %d, want 0", offset)
	}
}

func TestPageParamsBounds(t *testing.T) {
	t.Parallel()

	c, _ := testContext(t, "/api/events?limit=9999&offset=30")
	limit, offset := pageParams(c)
	if limit != maxPageLimit {
		t.Fatalf("limit = %d, want clamped to %d", limit, maxPageLimit)
	}
	if offset != 30 {
		t.Fatalf("offset = %d, want 30", offset)
	}
}

func TestPageParamsRejectsGarbage(t *testing.T) {
	t.Parallel()

	c, _ := testContext(t, "/api/events?limit=abc&offset=-5")
	limit, offset := pageParams(c)
	if limit != defaultPageLimit {
		t.Fatalf("limit = %d, want default for unparseable value", limit)
	}
	if offset != 0 {
		t.Fatalf("offset = %d, want 0 for negative value", offset)
	}
}

func TestJsendEnvelopes(t *testing.T) {
	t.Parallel()

	c, rec := testContext(t, "/api/events")
	if err := success(c, map[string]string{"k": "v"}); err != nil {
		t.Fatalf("success failed: %v", err)
	}
	var body jsendResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Status != "success" {
		t.Fatalf("status = %q", body.Status)
	}

	c2, rec2 := testContext(t, "/api/events")
	if err := failNotFound(c2, "missing"); err != nil {
		t.Fatalf("failNotFound failed: %v", err)
	}
	if rec2.Code != http.StatusNotFound {
		t.Fatalf("code = %d", rec2.Code)
	}

	c3, rec3 := testContext(t, "/api/events")
	if err := internalError(c3, "boom"); err != nil {
		t.Fatalf("internalError failed: %v", err)
	}
	if rec3.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d", rec3.Code)
	}
	var errBody jsendResponse
	if err := json.Unmarshal(rec3.Body.Bytes(), &errBody); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if errBody.Status != "error" || errBody.Code != http.StatusInternalServerError {
		t.Fatalf("envelope = %+v", errBody)
	}
}
