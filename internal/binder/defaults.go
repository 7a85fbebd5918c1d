package binder

import (
	"maps"
	"time"

	"github.com/hwdocs/go-md2tex/internal/dateutil"
)

// standardDefaults are the fallbacks for the datasheet cover keys.
var standardDefaults = map[string]string{
	"title":          "Hardware Module Documentation",
	"subtitle":       "Technical Specifications",
	"partnumber":     "HW-XXXXX-001",
	"version":        "Rev. 1.0",
	"author":         "Development Team",
	"organization":   "UNIT Electronics",
	"classification": "Public Technical Document",
	"standards":      "IEEE Std 1149.1, IPC-2221",
}

// Defaults returns the standard fallbacks with date set to now, overlaid
// with overrides. Override values may use date keywords such as "today".
func Defaults(now time.Time, overrides map[string]string) (map[string]string, error) {
	out := maps.Clone(standardDefaults)
	out["date"] = dateutil.Today(now)

	for k, v := range overrides {
		resolved, err := dateutil.Resolve(v, now)
		if err != nil {
			return nil, err
		}
		out[k] = resolved
	}
	return out, nil
}
