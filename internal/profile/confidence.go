package profile

// Confidence is the presentational quality level shown next to an
// extracted field. Derived at render time from value presence and length;
// never persisted.
type Confidence string

const (
	ConfidenceLow  Confidence = "Low"
	ConfidenceMed  Confidence = "Med"
	ConfidenceHigh Confidence = "High"
)

// FieldConfidence derives a confidence level for a field value.
// Empty or placeholder values are Low; longer values read as more certain.
func FieldConfidence(value string) Confidence {
	switch value {
	case "", "-", "Not provided", "No products":
		return ConfidenceLow
	}

	if len(value) > 10 {
		return ConfidenceHigh
	}

	return ConfidenceMed
}

// ProductsConfidence derives the confidence level for the product summary.
func (d *Draft) ProductsConfidence() Confidence {
	return FieldConfidence(d.SummaryText())
}
