package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	"go.uber.org/zap"

	"github.com/Brownie44l1/harvest/internal/catalog"
	"github.com/Brownie44l1/harvest/internal/fertilizer"
	"github.com/Brownie44l1/harvest/internal/model"
	"github.com/Brownie44l1/harvest/internal/weather"
)

// Predictor is the part of the model store the handlers use.
type Predictor interface {
	PredictCrop(features model.CropFeatures) (model.Prediction, error)
	PredictDisease(input []float32) (model.Prediction, error)
	DiseaseImage() model.ImageSpec
}

type Options struct {
	MaxUploadBytes int64
}

type Handler struct {
	models     Predictor
	weather    weather.Source
	fertilizer *fertilizer.Table
	catalog    *catalog.Catalog
	views      *renderer
	logger     *zap.Logger
	maxUpload  int64
}

func NewHandler(
	models Predictor,
	weatherSource weather.Source,
	table *fertilizer.Table,
	cat *catalog.Catalog,
	logger *zap.Logger,
	opts Options,
) (*Handler, error) {
	views, err := newRenderer(logger)
	if err != nil {
		return nil, err
	}

	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}

	return &Handler{
		models:     models,
		weather:    weatherSource,
		fertilizer: table,
		catalog:    cat,
		views:      views,
		logger:     logger,
		maxUpload:  maxUpload,
	}, nil
}

// Routes returns the site's handler with request logging applied.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /crop-recommendation", h.CropForm)
	mux.HandleFunc("GET /fertilizer-recommendation", h.FertilizerForm)
	mux.HandleFunc("GET /weather-info", h.WeatherForm)
	mux.HandleFunc("GET /disease-prediction", h.DiseaseForm)
	mux.HandleFunc("POST /disease-prediction", h.DiseasePrediction)
	mux.HandleFunc("POST /crop-prediction", h.CropPrediction)
	mux.HandleFunc("POST /fertilizer-prediction", h.FertilizerPrediction)
	mux.HandleFunc("POST /weather-data", h.WeatherData)
	mux.HandleFunc("GET /health", h.Health)

	return logRequests(h.logger, mux)
}

const (
	titleCrop       = "Crop Recommendation"
	titleFertilizer = "Fertilizer Suggestion"
	titleDisease    = "Disease Detection"
	titleWeather    = "Weather Info"
)

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.views.render(w, http.StatusOK, "index.html", newPage(""))
}

func (h *Handler) CropForm(w http.ResponseWriter, r *http.Request) {
	h.views.render(w, http.StatusOK, "crop.html", newPage(titleCrop))
}

func (h *Handler) FertilizerForm(w http.ResponseWriter, r *http.Request) {
	h.renderFertilizerForm(w, http.StatusOK, "")
}

func (h *Handler) WeatherForm(w http.ResponseWriter, r *http.Request) {
	h.views.render(w, http.StatusOK, "weather.html", newPage(titleWeather))
}

func (h *Handler) DiseaseForm(w http.ResponseWriter, r *http.Request) {
	h.renderDiseaseForm(w, http.StatusOK, "")
}

func (h *Handler) renderFertilizerForm(w http.ResponseWriter, status int, msg string) {
	p := newPage(titleFertilizer)
	p.Error = msg
	p.Crops = h.fertilizer.Crops()
	h.views.render(w, status, "fertilizer.html", p)
}

func (h *Handler) renderDiseaseForm(w http.ResponseWriter, status int, msg string) {
	p := newPage(titleDisease)
	p.Error = msg
	h.views.render(w, status, "disease.html", p)
}

func (h *Handler) renderTryAgain(w http.ResponseWriter, status int, section string) {
	h.views.render(w, status, "try-again.html", newPage(section))
}

// DiseasePrediction classifies an uploaded leaf photo from the "file" field.
func (h *Handler) DiseasePrediction(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.renderDiseaseForm(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("The image is larger than %d MB.", h.maxUpload>>20))
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			h.renderDiseaseForm(w, http.StatusBadRequest, "The upload could not be read.")
			return
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Redirect(w, r, r.URL.String(), http.StatusSeeOther)
		return
	}
	defer file.Close()

	if header.Size == 0 {
		h.renderDiseaseForm(w, http.StatusOK, "")
		return
	}

	h.logger.Debug("received file", zap.String("filename", header.Filename), zap.Int64("size", header.Size))

	img, format, err := image.Decode(file)
	if err != nil {
		h.logger.Info("rejected upload", zap.String("filename", header.Filename), zap.Error(err))
		h.renderDiseaseForm(w, http.StatusBadRequest, "Invalid image format. Supported: JPEG, PNG.")
		return
	}

	h.logger.Debug("decoded image",
		zap.String("format", format),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
	)

	inputData, err := preprocessImage(img, h.models.DiseaseImage())
	if err != nil {
		h.logger.Error("preprocessing failed", zap.Error(err))
		h.renderDiseaseForm(w, http.StatusInternalServerError, "Failed to preprocess image: "+err.Error())
		return
	}

	result, err := h.models.PredictDisease(inputData)
	if err != nil {
		h.logger.Error("disease prediction failed", zap.Error(err))
		h.renderDiseaseForm(w, http.StatusInternalServerError, "Prediction failed: "+err.Error())
		return
	}

	disease := h.catalog.Disease(result.Label)
	p := newPage(titleDisease)
	p.Prediction = result.Label
	p.Disease = &disease
	h.views.render(w, http.StatusOK, "disease-result.html", p)
}

// CropPrediction combines the soil reading with the city's current
// temperature and humidity.
func (h *Handler) CropPrediction(w http.ResponseWriter, r *http.Request) {
	form, err := parseCropForm(r)
	if err != nil {
		p := newPage(titleCrop)
		p.Error = err.Error()
		h.views.render(w, http.StatusBadRequest, "crop.html", p)
		return
	}

	current, ok, err := h.weather.Current(r.Context(), form.City)
	if err != nil {
		h.logger.Error("weather lookup failed", zap.String("city", form.City), zap.Error(err))
		h.renderTryAgain(w, http.StatusBadGateway, titleCrop)
		return
	}
	if !ok {
		h.renderTryAgain(w, http.StatusOK, titleCrop)
		return
	}

	result, err := h.models.PredictCrop(model.CropFeatures{
		Nitrogen:    float64(form.Nitrogen),
		Phosphorous: float64(form.Phosphorous),
		Potassium:   float64(form.Potassium),
		Temperature: current.Temperature,
		Humidity:    current.Humidity,
		PH:          form.PH,
		Rainfall:    form.Rainfall,
	})
	if err != nil {
		h.logger.Error("crop prediction failed", zap.Error(err))
		p := newPage(titleCrop)
		p.Error = "Prediction failed: " + err.Error()
		h.views.render(w, http.StatusInternalServerError, "crop.html", p)
		return
	}

	p := newPage(titleCrop)
	p.Prediction = result.Label
	h.views.render(w, http.StatusOK, "crop-result.html", p)
}

func (h *Handler) FertilizerPrediction(w http.ResponseWriter, r *http.Request) {
	form, err := parseFertilizerForm(r)
	if err != nil {
		h.renderFertilizerForm(w, http.StatusBadRequest, err.Error())
		return
	}

	row, err := h.fertilizer.Lookup(form.Crop)
	if err != nil {
		if errors.Is(err, fertilizer.ErrUnknownCrop) {
			h.renderFertilizerForm(w, http.StatusBadRequest,
				fmt.Sprintf("We have no reference values for %q. Please pick a crop from the list.", form.Crop))
			return
		}
		h.logger.Error("fertilizer lookup failed", zap.Error(err))
		h.renderFertilizerForm(w, http.StatusInternalServerError, "Lookup failed.")
		return
	}

	rec := fertilizer.Recommend(fertilizer.NPK{
		N: float64(form.Nitrogen),
		P: float64(form.Phosphorous),
		K: float64(form.Potassium),
	}, row)

	p := newPage(titleFertilizer)
	p.Crop = rec.Crop
	p.Balanced = rec.Balanced()
	for _, code := range rec.Advisories {
		advice, ok := h.catalog.Advice(code)
		if !ok {
			h.logger.Warn("no text for advisory", zap.String("code", string(code)))
			continue
		}
		p.Advisories = append(p.Advisories, advice)
	}
	h.views.render(w, http.StatusOK, "fertilizer-result.html", p)
}

func (h *Handler) WeatherData(w http.ResponseWriter, r *http.Request) {
	city, err := formString(r, "city")
	if err != nil {
		p := newPage(titleWeather)
		p.Error = err.Error()
		h.views.render(w, http.StatusBadRequest, "weather.html", p)
		return
	}

	current, ok, err := h.weather.Current(r.Context(), city)
	if err != nil {
		h.logger.Error("weather lookup failed", zap.String("city", city), zap.Error(err))
		h.renderTryAgain(w, http.StatusBadGateway, titleWeather)
		return
	}
	if !ok {
		h.renderTryAgain(w, http.StatusOK, titleWeather)
		return
	}

	p := newPage(titleWeather)
	p.City = city
	p.Weather = &current

	forecast, ok, err := h.weather.Forecast(r.Context(), current.Lat, current.Lon)
	switch {
	case err != nil:
		h.logger.Warn("forecast lookup failed", zap.String("city", city), zap.Error(err))
	case ok:
		p.Forecast = forecast
	}

	h.views.render(w, http.StatusOK, "weather-data.html", p)
}
