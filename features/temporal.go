package features

import (
	"math"
	"time"
)

// weekday returns the day of week with Monday = 0 through Sunday = 6, the
// numbering the model was trained on.
func weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// season buckets a month into 0 winter (Dec-Feb), 1 spring, 2 summer,
// 3 fall.
func season(month time.Month) float64 {
	switch month {
	case time.December, time.January, time.February:
		return 0
	case time.March, time.April, time.May:
		return 1
	case time.June, time.July, time.August:
		return 2
	default:
		return 3
	}
}

func boolFlag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// temporalFeatures decomposes a timestamp into the calendar, cyclical and
// flag columns the training pipeline derives. Keys not present in the
// schema are dropped by the caller.
func temporalFeatures(t time.Time) map[string]float64 {
	hour := t.Hour()
	month := int(t.Month())
	dow := weekday(t)
	_, isoWeek := t.ISOWeek()

	f := map[string]float64{
		"year":         float64(t.Year()),
		"month":        float64(month),
		"day_of_month": float64(t.Day()),
		"day_of_week":  float64(dow),
		"hour":         float64(hour),
		"minute":       float64(t.Minute()),
		"day_of_year":  float64(t.YearDay()),
		"week_of_year": float64(isoWeek),
		"quarter":      float64((month-1)/3 + 1),

		"hour_sin":        math.Sin(2 * math.Pi * float64(hour) / 24),
		"hour_cos":        math.Cos(2 * math.Pi * float64(hour) / 24),
		"month_sin":       math.Sin(2 * math.Pi * float64(month) / 12),
		"month_cos":       math.Cos(2 * math.Pi * float64(month) / 12),
		"day_of_week_sin": math.Sin(2 * math.Pi * float64(dow) / 7),
		"day_of_week_cos": math.Cos(2 * math.Pi * float64(dow) / 7),

		"is_weekend":      boolFlag(dow >= 5),
		"is_weekday":      boolFlag(dow < 5),
		"is_rush_hour_am": boolFlag(hour >= 7 && hour < 10),
		"is_rush_hour_pm": boolFlag(hour >= 16 && hour < 19),
		"is_night":        boolFlag(hour >= 22 || hour < 6),

		"season": season(t.Month()),
	}
	f["is_rush_hour"] = boolFlag(f["is_rush_hour_am"] == 1 || f["is_rush_hour_pm"] == 1)
	return f
}

// dayNames indexed by weekday(), Monday first.
var dayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}
