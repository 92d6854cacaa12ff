package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	_ "time/tzdata"

	"go.uber.org/zap/zaptest"
)

const currentBody = `{
	"coord": {"lon": 77.22, "lat": 28.67},
	"weather": [{"main": "Clouds", "icon": "04d"}],
	"main": {"temp": 300.15, "feels_like": 301.15, "temp_min": 299.15, "temp_max": 302.65, "humidity": 65},
	"wind": {"speed": 10},
	"sys": {"sunrise": 1700000000, "sunset": 1700040000},
	"name": "Delhi",
	"cod": 200
}`

const forecastBody = `{
	"lat": 28.67, "lon": 77.22,
	"daily": [
		{"dt": 1700000000, "temp": {"day": 290.15}, "weather": [{"icon": "01d"}]},
		{"dt": 1700086400, "temp": {"day": 295.15}, "weather": [{"icon": "02d"}]},
		{"dt": 1700172800, "temp": {"day": 296.65}, "weather": [{"icon": "10d"}]},
		{"dt": 1700259200, "temp": {"day": 273.15}, "weather": []}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, tz string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		APIKey:      "secret",
		CurrentURL:  srv.URL + "/weather",
		ForecastURL: srv.URL + "/onecall",
		Timezone:    tz,
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestConversions(t *testing.T) {
	if got := KelvinToCelsius(300.15); got != 27.00 {
		t.Fatalf("KelvinToCelsius(300.15) = %v", got)
	}
	if got := KelvinToCelsius(273.15); got != 0 {
		t.Fatalf("KelvinToCelsius(273.15) = %v", got)
	}
	if got := MetersPerSecondToKMH(10); got != 36.0 {
		t.Fatalf("MetersPerSecondToKMH(10) = %v", got)
	}
	if got := MetersPerSecondToKMH(1.23); got != 4.4 {
		t.Fatalf("MetersPerSecondToKMH(1.23) = %v", got)
	}
}

func TestCurrentParsesAndConverts(t *testing.T) {
	var gotQuery, gotKey string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotKey = r.URL.Query().Get("appid")
		w.Write([]byte(currentBody))
	}, "Asia/Kolkata")

	cur, ok, err := client.Current(context.Background(), "  Delhi ")
	if err != nil || !ok {
		t.Fatalf("Current = %v, %v", ok, err)
	}
	if gotQuery != "Delhi" || gotKey != "secret" {
		t.Fatalf("query q=%q appid=%q", gotQuery, gotKey)
	}

	if cur.Temperature != 27 || cur.FeelsLike != 28 || cur.MinTemp != 26 || cur.MaxTemp != 29.5 {
		t.Fatalf("temperatures not converted: %+v", cur)
	}
	if cur.WindSpeed != 36 {
		t.Fatalf("wind speed = %v", cur.WindSpeed)
	}
	if cur.Humidity != 65 || cur.Cloudiness != "Clouds" || cur.City != "Delhi" {
		t.Fatalf("unexpected fields: %+v", cur)
	}
	if cur.Icon != "https://openweathermap.org/img/wn/04d@2x.png" {
		t.Fatalf("icon = %q", cur.Icon)
	}
	if cur.Lat != 28.67 || cur.Lon != 77.22 {
		t.Fatalf("coords = %v,%v", cur.Lat, cur.Lon)
	}
	if got := cur.SunriseClock(); got != "03:43" {
		t.Fatalf("sunrise = %q", got)
	}
	if got := cur.SunsetClock(); got != "14:50" {
		t.Fatalf("sunset = %q", got)
	}
}

func TestCurrentNon200IsAbsent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	}, "")

	_, ok, err := client.Current(context.Background(), "Atlantis")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ok {
		t.Fatal("expected absent result")
	}
}

func TestCurrentMalformedBodyIsError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}, "")

	if _, _, err := client.Current(context.Background(), "Delhi"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestForecastSkipsToday(t *testing.T) {
	var gotLat, gotLon string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotLat = r.URL.Query().Get("lat")
		gotLon = r.URL.Query().Get("lon")
		w.Write([]byte(forecastBody))
	}, "UTC")

	days, ok, err := client.Forecast(context.Background(), 28.67, 77.22)
	if err != nil || !ok {
		t.Fatalf("Forecast = %v, %v", ok, err)
	}
	if gotLat != "28.67" || gotLon != "77.22" {
		t.Fatalf("lat=%q lon=%q", gotLat, gotLon)
	}
	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}

	wantDates := []string{"15-11-23", "16-11-23", "17-11-23"}
	wantTemps := []float64{22, 23.5, 0}
	for i, d := range days {
		if d.DateLabel() != wantDates[i] {
			t.Errorf("day %d date = %q, want %q", i, d.DateLabel(), wantDates[i])
		}
		if d.Temperature != wantTemps[i] {
			t.Errorf("day %d temp = %v, want %v", i, d.Temperature, wantTemps[i])
		}
	}
	if days[0].Icon != "https://openweathermap.org/img/wn/02d@2x.png" || days[2].Icon != "" {
		t.Fatalf("icons = %q, %q", days[0].Icon, days[2].Icon)
	}
}

func TestForecastEmptyDaily(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"lat": 1, "lon": 2, "daily": []}`))
	}, "")

	days, ok, err := client.Forecast(context.Background(), 1, 2)
	if err != nil || !ok || len(days) != 0 {
		t.Fatalf("Forecast = %v, %v, %v", days, ok, err)
	}
}

func TestForecastNon200IsAbsent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, "")

	days, ok, err := client.Forecast(context.Background(), 1, 2)
	if err != nil || ok || days != nil {
		t.Fatalf("Forecast = %v, %v, %v", days, ok, err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(Config{}, zaptest.NewLogger(t)); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestNewClientRejectsBadTimezone(t *testing.T) {
	if _, err := NewClient(Config{APIKey: "k", Timezone: "Mars/Olympus"}, zaptest.NewLogger(t)); err == nil {
		t.Fatal("expected error for unknown zone")
	}
}
