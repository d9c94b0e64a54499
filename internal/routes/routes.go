package routes

import "strings"

// Table - статические списки маршрутов, из которых строится классификатор
type Table struct {
	// Protected - префиксы, требующие сессии (сам путь и все подпути)
	Protected []string
	// Public - страницы, доступные всем
	Public []string
	// Auth - страницы только для неавторизованных (точное совпадение)
	Auth []string
}

// DefaultTable возвращает таблицу маршрутов веб-приложения
func DefaultTable() Table {
	return Table{
		Protected: []string{
			"/dashboard",
			"/billing",
			"/projects",
			"/history",
			"/settings",
			"/profile",
			"/team",
			"/voices",
			"/subtitles",
			"/video",
			"/audio",
		},
		Public: []string{"/", "/login", "/signup", "/forgot-password"},
		Auth:   []string{"/login", "/signup"},
	}
}

// Classification - результат классификации одного пути
type Classification struct {
	Path      string
	Protected bool
	AuthRoute bool
	Public    bool
	Root      bool
}

// Classifier классифицирует пути по неизменяемым спискам маршрутов.
// Создается один раз при старте и безопасен для конкурентного использования.
type Classifier struct {
	protected []string
	public    map[string]struct{}
	auth      map[string]struct{}
}

// NewClassifier копирует и нормализует таблицу маршрутов
func NewClassifier(t Table) *Classifier {
	c := &Classifier{
		protected: make([]string, 0, len(t.Protected)),
		public:    make(map[string]struct{}, len(t.Public)),
		auth:      make(map[string]struct{}, len(t.Auth)),
	}
	for _, p := range t.Protected {
		c.protected = append(c.protected, Normalize(p))
	}
	for _, p := range t.Public {
		c.public[Normalize(p)] = struct{}{}
	}
	for _, p := range t.Auth {
		c.auth[Normalize(p)] = struct{}{}
	}
	return c
}

// Classify нормализует путь и определяет его класс
func (c *Classifier) Classify(path string) Classification {
	p := Normalize(path)
	_, isAuth := c.auth[p]
	_, isPublic := c.public[p]
	return Classification{
		Path:      p,
		Protected: c.isProtected(p),
		AuthRoute: isAuth,
		Public:    isPublic,
		Root:      p == "/",
	}
}

func (c *Classifier) isProtected(p string) bool {
	for _, route := range c.protected {
		if p == route || strings.HasPrefix(p, route+"/") {
			return true
		}
	}
	return false
}

// Normalize убирает завершающие слэши, корень "/" остается как есть
func Normalize(path string) string {
	if path == "/" {
		return path
	}
	p := strings.TrimRight(path, "/")
	if p == "" {
		return "/"
	}
	return p
}

// excludedPrefixes - пути, к которым гейт не применяется
var excludedPrefixes = []string{"api", "_next/static", "_next/image", "favicon.ico"}

// Excluded сообщает, что путь не проходит через гейт: API, статика сборки
// и favicon. Сравнение идет по началу пути после ведущего слэша.
func Excluded(path string) bool {
	rest := strings.TrimPrefix(path, "/")
	for _, prefix := range excludedPrefixes {
		if strings.HasPrefix(rest, prefix) {
			return true
		}
	}
	return false
}
