package catalog

import (
	"testing"

	"github.com/Brownie44l1/harvest/internal/fertilizer"
)

func TestDefaultCatalogCoversAdvisories(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	a, ok := c.Advice(fertilizer.NitrogenLow)
	if !ok || a.Title == "" || len(a.Suggestions) == 0 {
		t.Fatalf("NLow advice = %+v, %v", a, ok)
	}
	if len(c.Diseases) != 38 {
		t.Fatalf("expected 38 disease entries, got %d", len(c.Diseases))
	}
}

func TestDiseaseKnownLabel(t *testing.T) {
	c, _ := Default()

	d := c.Disease("Tomato___Late_blight")
	if d.Crop != "Tomato" || d.Name != "Late blight" || d.Healthy || len(d.Prevention) == 0 {
		t.Fatalf("unexpected entry %+v", d)
	}

	if d := c.Disease("Apple___healthy"); !d.Healthy {
		t.Fatalf("Apple___healthy should be healthy: %+v", d)
	}
}

func TestDiseaseFallsBackToLabel(t *testing.T) {
	c, _ := Default()

	d := c.Disease("Mango___Anthracnose_leaf_spot")
	if d.Crop != "Mango" || d.Name != "Anthracnose leaf spot" {
		t.Fatalf("fallback = %+v", d)
	}

	d = c.Disease("Okra___healthy")
	if !d.Healthy || d.Crop != "Okra" {
		t.Fatalf("healthy fallback = %+v", d)
	}

	d = c.Disease("odd_label")
	if d.Name != "odd label" {
		t.Fatalf("unstructured fallback = %+v", d)
	}
}

func TestParseRequiresEveryAdvisory(t *testing.T) {
	_, err := Parse([]byte("advisories:\n  NHigh:\n    title: x\n"))
	if err == nil {
		t.Fatal("expected error for incomplete advisories")
	}
}
