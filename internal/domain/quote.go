package domain

// Surcharges are fixed base-currency fees for non-default add-on tiers.
var (
	AccommodationSurcharges = map[AccommodationTier]float64{
		AccommodationStandard: 0,
		AccommodationPremium:  100,
		AccommodationLuxury:   200,
	}
	TransportSurcharges = map[TransportTier]float64{
		TransportShared:  0,
		TransportPrivate: 150,
	}
)

// ChildRateFactor is the share of the adult rate charged per child.
const ChildRateFactor = 0.7

// QuoteInput is everything the price calculator reads.
type QuoteInput struct {
	BasePrice     float64
	Adults        int
	Children      int
	Accommodation AccommodationTier
	Transport     TransportTier
}

// Quote is a priced breakdown in the base currency.
// PriceUnparsed is set when the package price label could not be parsed and
// BasePrice fell back to 0. Such quotes are valid but should be reviewed.
type Quote struct {
	BasePrice              float64 `json:"base_price"`
	AdultsSubtotal         float64 `json:"adults_subtotal"`
	ChildrenSubtotal       float64 `json:"children_subtotal"`
	AccommodationSurcharge float64 `json:"accommodation_surcharge"`
	TransportSurcharge     float64 `json:"transport_surcharge"`
	Total                  float64 `json:"total"`
	PriceUnparsed          bool    `json:"price_unparsed"`
}
