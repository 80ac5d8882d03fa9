package aviation

// aviationstackResponse is the envelope returned by GET /flights
type aviationstackResponse struct {
	Pagination aviationstackPagination `json:"pagination"`
	Data       []aviationstackFlight   `json:"data"`
}

type aviationstackPagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
	Total  int `json:"total"`
}

type aviationstackFlight struct {
	FlightDate   string               `json:"flight_date"`
	FlightStatus string               `json:"flight_status"`
	Departure    aviationstackLeg     `json:"departure"`
	Arrival      aviationstackLeg     `json:"arrival"`
	Airline      aviationstackCarrier `json:"airline"`
	Flight       aviationstackNumber  `json:"flight"`
}

// aviationstackLeg describes one end of a flight. Every field may be null upstream.
type aviationstackLeg struct {
	Airport   string  `json:"airport"`
	Timezone  *string `json:"timezone"`
	IATA      string  `json:"iata"`
	ICAO      *string `json:"icao"`
	Terminal  *string `json:"terminal"`
	Gate      *string `json:"gate"`
	Delay     *int    `json:"delay"`
	Scheduled *string `json:"scheduled"`
	Estimated *string `json:"estimated"`
	Actual    *string `json:"actual"`
}

type aviationstackCarrier struct {
	Name string `json:"name"`
	IATA string `json:"iata"`
	ICAO string `json:"icao"`
}

type aviationstackNumber struct {
	Number string `json:"number"`
	IATA   string `json:"iata"`
	ICAO   string `json:"icao"`
}
