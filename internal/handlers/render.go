package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Brownie44l1/harvest/internal/catalog"
	"github.com/Brownie44l1/harvest/internal/weather"
)

//go:embed templates/*.html
var templateFS embed.FS

const siteName = "Harvestopedia"

var pageFiles = []string{
	"index.html",
	"crop.html",
	"crop-result.html",
	"fertilizer.html",
	"fertilizer-result.html",
	"disease.html",
	"disease-result.html",
	"weather.html",
	"weather-data.html",
	"try-again.html",
}

// page is the data passed to every template.
type page struct {
	Title string
	Error string
	Crops []string

	Prediction string
	Disease    *catalog.Disease

	Crop       string
	Balanced   bool
	Advisories []catalog.Advice

	City     string
	Weather  *weather.Current
	Forecast []weather.ForecastDay
}

func newPage(section string) page {
	if section == "" {
		return page{Title: siteName}
	}
	return page{Title: siteName + " - " + section}
}

// celsius always shows a decimal part, so 27 renders as "27.0°C".
func celsius(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + "°C"
}

type renderer struct {
	pages  map[string]*template.Template
	logger *zap.Logger
}

func newRenderer(logger *zap.Logger) (*renderer, error) {
	funcs := template.FuncMap{
		"upper":   strings.ToUpper,
		"celsius": celsius,
	}

	base, err := template.New("base.html").Funcs(funcs).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base template: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageFiles))
	for _, name := range pageFiles {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		pages[name] = t
	}

	return &renderer{pages: pages, logger: logger}, nil
}

func (r *renderer) render(w http.ResponseWriter, status int, name string, data page) {
	t, ok := r.pages[name]
	if !ok {
		r.logger.Error("unknown template", zap.String("template", name))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		r.logger.Error("template execution failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
