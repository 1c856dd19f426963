package httpx_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gunvolt24/shoecart/pkg/httpx"
	"github.com/gin-gonic/gin"
)

// Утилита для создания *gin.Context с path-параметром id
func ctxWithID(id string) *gin.Context {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: id}}
	return c
}

func TestParseProductID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{"ok", "42", 42, false},
		{"ok_spaced", " 7 ", 7, false},
		{"zero", "0", 0, true},
		{"negative", "-3", 0, true},
		{"not_int", "shoe", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := httpx.ParseProductID(ctxWithID(tt.raw), "id")
			if tt.wantErr {
				if !errors.Is(err, httpx.ErrBadProductID) {
					t.Fatalf("want ErrBadProductID, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("got id=%d err=%v, want %d", got, err, tt.want)
			}
		})
	}
}
