package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
)

// FieldError describes a form field that could not be used.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s", fieldLabels[e.Field], e.Reason)
}

var fieldLabels = map[string]string{
	"nitrogen":    "Nitrogen",
	"phosphorous": "Phosphorous",
	"potassium":   "Potassium",
	"ph":          "pH",
	"rainfall":    "Rainfall",
	"city":        "City",
	"crop":        "Crop",
}

func formString(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(r.PostFormValue(name))
	if v == "" {
		return "", &FieldError{Field: name, Reason: "is required"}
	}
	return v, nil
}

func formInt(r *http.Request, name string, min, max int) (int, error) {
	s, err := formString(r, name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, &FieldError{Field: name, Reason: "must be a whole number"}
	}
	if v < min || v > max {
		return 0, &FieldError{Field: name, Reason: fmt.Sprintf("must be between %d and %d", min, max)}
	}
	return v, nil
}

func formFloat(r *http.Request, name string, min, max float64) (float64, error) {
	s, err := formString(r, name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &FieldError{Field: name, Reason: "must be a number"}
	}
	if v < min || v > max {
		return 0, &FieldError{Field: name, Reason: fmt.Sprintf("must be between %g and %g", min, max)}
	}
	return v, nil
}

// Input limits for the soil forms.
const (
	maxNutrient = 1000
	maxRainfall = 10000
)

type cropForm struct {
	Nitrogen    int
	Phosphorous int
	Potassium   int
	PH          float64
	Rainfall    float64
	City        string
}

func parseCropForm(r *http.Request) (cropForm, error) {
	var f cropForm
	var err error
	if f.Nitrogen, err = formInt(r, "nitrogen", 0, maxNutrient); err != nil {
		return f, err
	}
	if f.Phosphorous, err = formInt(r, "phosphorous", 0, maxNutrient); err != nil {
		return f, err
	}
	if f.Potassium, err = formInt(r, "potassium", 0, maxNutrient); err != nil {
		return f, err
	}
	if f.PH, err = formFloat(r, "ph", 0, 14); err != nil {
		return f, err
	}
	if f.Rainfall, err = formFloat(r, "rainfall", 0, maxRainfall); err != nil {
		return f, err
	}
	if f.City, err = formString(r, "city"); err != nil {
		return f, err
	}
	return f, nil
}

type fertilizerForm struct {
	Crop        string
	Nitrogen    int
	Phosphorous int
	Potassium   int
}

func parseFertilizerForm(r *http.Request) (fertilizerForm, error) {
	var f fertilizerForm
	var err error
	if f.Crop, err = formString(r, "crop"); err != nil {
		return f, err
	}
	if f.Nitrogen, err = formInt(r, "nitrogen", 0, maxNutrient); err != nil {
		return f, err
	}
	if f.Phosphorous, err = formInt(r, "phosphorous", 0, maxNutrient); err != nil {
		return f, err
	}
	if f.Potassium, err = formInt(r, "potassium", 0, maxNutrient); err != nil {
		return f, err
	}
	return f, nil
}
