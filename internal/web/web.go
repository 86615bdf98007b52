package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var static embed.FS

// Handler отдаёт браузерный клиент (index.html, app.js, style.css)
func Handler() http.Handler {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		// каталог встроен при сборке
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
