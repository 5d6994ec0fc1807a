package handlers

import (
	"net/http"

	"github.com/geocoder89/notehub/internal/flash"
	"github.com/geocoder89/notehub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// render executes an HTML page with the data every layout needs: the page
// title, the logged-in user (nil when anonymous) and the pending flashes.
func render(ctx *gin.Context, status int, page, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	data["title"] = title
	data["user"] = middlewares.CurrentUser(ctx)
	data["flashes"] = flash.Pop(ctx)

	ctx.HTML(status, page, data)
}

// redirect persists pending flashes so the next page can show them.
func redirect(ctx *gin.Context, location string) {
	flash.Save(ctx)
	ctx.Redirect(http.StatusFound, location)
}
