package handlers

import "piriven.moe.gov.lk/web/internal/config"

// Analytics holds client instrumentation configuration surfaced to templates.
type Analytics struct {
	GA4MeasurementID string // e.g. G-XXXXXXXXXX
	Debug            bool
}

// Enabled reports whether a tag should be rendered.
func (a Analytics) Enabled() bool { return a.GA4MeasurementID != "" }

// AnalyticsFromConfig builds Analytics from loaded configuration. Development
// builds keep the tag but flag it as debug traffic.
func AnalyticsFromConfig(cfg config.AnalyticsConfig, dev bool) Analytics {
	return Analytics{
		GA4MeasurementID: cfg.GA4MeasurementID,
		Debug:            dev,
	}
}
