package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/foodeat/internal/domain/analysis"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

const (
	appTitle       = "FoodEat"
	appDescription = "FoodEat AI diet analysis service"
	genericFailure = "알 수 없는 오류가 발생했습니다."
)

type pageData struct {
	AppTitle    string
	Description string
	Refresh     int
	SignedIn    bool
	Nickname    string
	Placeholder string
	View        analysis.View
	PhotoURL    string
	Upload      uploadForm
	SignIn      signInForm
	Failure     string
}

type uploadForm struct {
	Action  string
	MaxSize int64
}

type signInForm struct {
	Action   string
	OAuthURL string
	Direct   bool
}

type renderer struct {
	tmpl   *template.Template
	logger *slog.Logger
}

func newRenderer(logger *slog.Logger) (*renderer, error) {
	tmpl, err := template.New("pages").Funcs(template.FuncMap{
		"kcal":  formatKcal,
		"share": share,
	}).ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &renderer{tmpl: tmpl, logger: logger}, nil
}

// render executes into a buffer first so a template failure never leaves a half written page.
func (r *renderer) render(c *gin.Context, status int, name string, data pageData) {
	data.AppTitle = appTitle
	data.Description = appDescription
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		r.logger.Error("template execution failed", "template", name, "error", err)
		c.String(http.StatusInternalServerError, genericFailure)
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func (r *renderer) errorPage(c *gin.Context, status int) {
	r.render(c, status, "error", pageData{Failure: genericFailure})
}

func formatKcal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// share returns part as a percentage of the positive calorie contributions, for bar widths.
func share(part float64, b *analysis.Breakdown) float64 {
	if b == nil {
		return 0
	}
	total := 0.0
	for _, v := range []float64{b.CarbsKcal, b.ProteinKcal, b.FatKcal, b.EtcKcal} {
		if v > 0 {
			total += v
		}
	}
	if total == 0 || part <= 0 {
		return 0
	}
	return math.Round(part/total*1000) / 10
}
