// Package flash implements one-shot user messages. Messages added during a
// request are shown by the next rendered page, either in the same response
// or, after Save, in the response following a redirect.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Category string

const (
	Success Category = "success"
	Error   Category = "error"
)

const (
	cookieName = "flash"
	ctxKey     = "flash.pending"
)

type Message struct {
	Text     string   `json:"message"`
	Category Category `json:"category"`
}

type state struct {
	pending    []Message
	fromCookie bool
}

func load(c *gin.Context) *state {
	if v, ok := c.Get(ctxKey); ok {
		if st, ok := v.(*state); ok {
			return st
		}
	}

	st := &state{}

	if raw, err := c.Cookie(cookieName); err == nil && raw != "" {
		st.fromCookie = true
		st.pending = decode(raw)
	}

	c.Set(ctxKey, st)
	return st
}

func Add(c *gin.Context, category Category, text string) {
	st := load(c)
	st.pending = append(st.pending, Message{Text: text, Category: category})
}

// Save writes the pending messages to the flash cookie. Call it before a redirect.
func Save(c *gin.Context) {
	st := load(c)

	if len(st.pending) == 0 {
		return
	}

	setCookie(c, encode(st.pending), 0)
}

// Pop returns and forgets every pending message.
func Pop(c *gin.Context) []Message {
	st := load(c)
	msgs := st.pending
	st.pending = nil

	if st.fromCookie {
		setCookie(c, "", -1)
		st.fromCookie = false
	}

	return msgs
}

func setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieName, value, maxAge, "/", "", false, true)
}

func encode(msgs []Message) string {
	b, err := json.Marshal(msgs)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// decode drops a cookie it cannot read rather than failing the request.
func decode(raw string) []Message {
	b, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}

	var msgs []Message
	if err := json.Unmarshal(b, &msgs); err != nil {
		return nil
	}

	return msgs
}
