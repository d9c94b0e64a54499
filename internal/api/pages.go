package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// PagesHandler отдает собранные страницы из staticDir. Для пути /x ищется
// файл x, затем x.html и x/index.html; если ничего не нашлось - index.html.
func PagesHandler(staticDir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		base := filepath.Join(staticDir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))

		for _, candidate := range []string{base, base + ".html", filepath.Join(base, "index.html")} {
			if isFile(candidate) {
				http.ServeFile(w, r, candidate)
				return
			}
		}

		http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
	})
}

func isFile(name string) bool {
	info, err := os.Stat(name)
	return err == nil && !info.IsDir()
}
