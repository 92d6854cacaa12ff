package fertilizer

// Threshold is the distance from the ideal value at which a nutrient is
// reported. The comparison is inclusive.
const Threshold = 10

type Advisory string

const (
	NitrogenHigh    Advisory = "NHigh"
	NitrogenLow     Advisory = "NLow"
	PhosphorousHigh Advisory = "PHigh"
	PhosphorousLow  Advisory = "PLow"
	PotassiumHigh   Advisory = "KHigh"
	PotassiumLow    Advisory = "KLow"
)

// NPK is a measured soil reading.
type NPK struct {
	N float64
	P float64
	K float64
}

type Recommendation struct {
	Crop       string
	Advisories []Advisory
}

// Balanced reports whether no nutrient is outside the threshold.
func (r Recommendation) Balanced() bool {
	return len(r.Advisories) == 0
}

// Recommend compares a reading against a crop's ideal values. Advisories are
// returned in N, P, K order.
func Recommend(given NPK, row Row) Recommendation {
	rec := Recommendation{Crop: row.Crop}

	checks := []struct {
		delta     float64
		high, low Advisory
	}{
		{given.N - row.N, NitrogenHigh, NitrogenLow},
		{given.P - row.P, PhosphorousHigh, PhosphorousLow},
		{given.K - row.K, PotassiumHigh, PotassiumLow},
	}
	for _, c := range checks {
		switch {
		case c.delta >= Threshold:
			rec.Advisories = append(rec.Advisories, c.high)
		case c.delta <= -Threshold:
			rec.Advisories = append(rec.Advisories, c.low)
		}
	}

	return rec
}
