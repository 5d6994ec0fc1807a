package flash

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func findCookie(res *http.Response) *http.Cookie {
	for _, c := range res.Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	return nil
}

func TestFlash_SameRequest(t *testing.T) {
	var got []Message

	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		Add(c, Error, "Note is too short!")
		got = Pop(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if len(got) != 1 || got[0].Text != "Note is too short!" || got[0].Category != Error {
		t.Fatalf("unexpected flashes: %+v", got)
	}
	if findCookie(w.Result()) != nil {
		t.Fatalf("no cookie should be written when the flash is rendered in place")
	}
}

func TestFlash_SurvivesRedirect(t *testing.T) {
	var got []Message

	r := gin.New()
	r.POST("/login", func(c *gin.Context) {
		Add(c, Success, "Logged in successfully!")
		Save(c)
		c.Redirect(http.StatusFound, "/")
	})
	r.GET("/", func(c *gin.Context) {
		got = Pop(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))

	cookie := findCookie(w.Result())
	if cookie == nil {
		t.Fatalf("expected flash cookie on redirect")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)

	if len(got) != 1 || got[0].Text != "Logged in successfully!" || got[0].Category != Success {
		t.Fatalf("unexpected flashes: %+v", got)
	}

	cleared := findCookie(w2.Result())
	if cleared == nil || cleared.MaxAge >= 0 {
		t.Fatalf("flash cookie should be cleared once shown, got %+v", cleared)
	}
}

func TestDecode_Garbage(t *testing.T) {
	if msgs := decode("%%%"); msgs != nil {
		t.Fatalf("expected nil for undecodable cookie, got %+v", msgs)
	}
	if msgs := decode(encode([]Message{{Text: "a", Category: Success}})); len(msgs) != 1 {
		t.Fatalf("round trip failed: %+v", msgs)
	}
}
