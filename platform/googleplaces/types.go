package googleplaces

// placesResponse mirrors the relevant parts of a Places Web Service search
// payload (nearby and text search share the shape).
type placesResponse struct {
	Results []placeResult `json:"results"`
	Status  string        `json:"status"`
}

type placeResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Vicinity         string   `json:"vicinity"`
	FormattedAddress string   `json:"formatted_address"`
	Geometry         geometry `json:"geometry"`
	Rating           *float64 `json:"rating,omitempty"`
	UserRatingsTotal *int     `json:"user_ratings_total,omitempty"`
	Types            []string `json:"types"`
	BusinessStatus   *string  `json:"business_status,omitempty"`
}

type geometry struct {
	Location location `json:"location"`
}

type location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type detailsResponse struct {
	Result detailsResult `json:"result"`
	Status string        `json:"status"`
}

type detailsResult struct {
	PlaceID              string        `json:"place_id"`
	Name                 string        `json:"name"`
	FormattedAddress     string        `json:"formatted_address"`
	FormattedPhoneNumber string        `json:"formatted_phone_number"`
	Website              string        `json:"website"`
	Geometry             geometry      `json:"geometry"`
	Rating               *float64      `json:"rating,omitempty"`
	UserRatingsTotal     *int          `json:"user_ratings_total,omitempty"`
	Types                []string      `json:"types"`
	OpeningHours         *openingHours `json:"opening_hours,omitempty"`
	Reviews              []review      `json:"reviews,omitempty"`
}

type openingHours struct {
	OpenNow     *bool    `json:"open_now,omitempty"`
	WeekdayText []string `json:"weekday_text,omitempty"`
}

type review struct {
	AuthorName string  `json:"author_name"`
	Rating     float64 `json:"rating"`
	Text       string  `json:"text"`
	Time       int64   `json:"time"`
}

// Place is a search result from the Places API.
type Place struct {
	PlaceID string   `json:"placeId"`
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Lat     float64  `json:"lat"`
	Lng     float64  `json:"lng"`
	Rating  *float64 `json:"rating,omitempty"`
	Types   []string `json:"types"`
}

// Review is a single user review from place details.
type Review struct {
	AuthorName string  `json:"authorName"`
	Rating     float64 `json:"rating"`
	Text       string  `json:"text"`
	PostedUnix int64   `json:"postedUnix"`
}

// PlaceDetails is the full detail record for a place.
type PlaceDetails struct {
	Place
	Phone           string   `json:"phone,omitempty"`
	Website         string   `json:"website,omitempty"`
	OpenNow         *bool    `json:"openNow,omitempty"`
	OpeningHours    []string `json:"openingHours,omitempty"`
	Reviews         []Review `json:"reviews,omitempty"`
	UserRatingCount int      `json:"userRatingCount"`
}
