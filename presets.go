package propschema

// Time returns a nullable object holding a wall-clock time as hours and
// minutes.
func Time(name string, desc ...string) *Property {
	return Object(name, desc...).
		AddProperty(Integer("hours").Minimum(0).Maximum(23).Required()).
		AddProperty(Integer("minutes").Minimum(0).Maximum(59).Required()).
		Nullable()
}

// TimeRange returns an object with start and end Time children.
func TimeRange(name string, desc ...string) *Property {
	return Object(name, desc...).
		AddProperty(Time("start")).
		AddProperty(Time("end"))
}

// DateRange returns an object with start and end dates (format "date").
func DateRange(name string, desc ...string) *Property {
	return Object(name, desc...).
		AddProperty(String("start").Format("date")).
		AddProperty(String("end").Format("date"))
}

// DurationUnits are the units accepted by Duration.
var DurationUnits = []any{"seconds", "minutes", "hours", "days"}

// Duration returns an object holding a non-negative amount and its unit.
func Duration(name string, desc ...string) *Property {
	return Object(name, desc...).
		AddProperty(Number("value").Minimum(0)).
		AddProperty(String("unit").Enum(DurationUnits...).Default("minutes"))
}
