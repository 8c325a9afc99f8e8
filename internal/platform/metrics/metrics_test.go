package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/batches/{batchID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, target := range []string{"/batches/b-1", "/no/such/route/4f1c"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	}

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rr.Body)
	out := string(body)

	if !strings.Contains(out, `path="/batches/{batchID}",status="204"`) {
		t.Errorf("matched route not labelled by pattern:\n%s", out)
	}
	if !strings.Contains(out, `path="unmatched",status="404"`) {
		t.Errorf("unmatched route not labelled as unmatched:\n%s", out)
	}
	if strings.Contains(out, "/no/such/route/4f1c") {
		t.Error("raw request path leaked into labels")
	}
}
