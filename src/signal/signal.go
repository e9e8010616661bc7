package signal

type Direction string

const (
	DirectionBuy     Direction = "buy"
	DirectionSell    Direction = "sell"
	DirectionUnknown Direction = "unknown"
)

// Signal is the normalized trading intent extracted from one alert.
// An empty Ticker means no symbol could be recognized in the alert.
type Signal struct {
	Ticker    string    `json:"ticker"`
	Direction Direction `json:"direction"`
	IsExit    bool      `json:"is_exit"`
	Price     string    `json:"price"`
	Raw       string    `json:"raw"`
}

func (s Signal) HasTicker() bool {
	return s.Ticker != ""
}

// IsEntry reports whether the signal asks to open (or flip into) a position.
func (s Signal) IsEntry() bool {
	return !s.IsExit && (s.Direction == DirectionBuy || s.Direction == DirectionSell)
}
