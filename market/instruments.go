package market

// InstrumentMeta carries the broker-reported contract details the engine
// needs for sizing and stop placement. Distances are in price units unless
// the field name says otherwise.
type InstrumentMeta struct {
	Name            string
	PointSize       float64 // minimum quote increment, e.g. 0.00001
	Digits          int     // quote decimal places
	MinVolume       float64
	MaxVolume       float64
	VolumeStep      float64
	TickValue       float64 // account-currency value of one tick per lot
	TickSize        float64
	MinStopDistance float64 // broker minimum stop offset from price
	FreezeDistance  float64 // no stop modification inside this band
}

// Pip returns the pip size for the instrument. Brokers quoting 3 or 5
// decimals use fractional points, so a pip is ten points there.
func (m InstrumentMeta) Pip() float64 {
	if m.Digits == 3 || m.Digits == 5 {
		return m.PointSize * 10
	}
	return m.PointSize
}

// Instruments holds contract metadata for the instruments the engine has
// been run against. Live deployments should pull this from the broker.
var Instruments = map[string]InstrumentMeta{
	"EUR_USD": {
		Name:            "EUR_USD",
		PointSize:       0.00001,
		Digits:          5,
		MinVolume:       0.01,
		MaxVolume:       100,
		VolumeStep:      0.01,
		TickValue:       1.0,
		TickSize:        0.00001,
		MinStopDistance: 0.0002,
		FreezeDistance:  0.0001,
	},
	"USD_JPY": {
		Name:            "USD_JPY",
		PointSize:       0.001,
		Digits:          3,
		MinVolume:       0.01,
		MaxVolume:       100,
		VolumeStep:      0.01,
		TickValue:       1.0,
		TickSize:        0.001,
		MinStopDistance: 0.02,
		FreezeDistance:  0.01,
	},
}
