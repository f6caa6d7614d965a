package dialog

import (
	"github.com/chatassist/dialog-manager/pkg/record"
)

const (
	StatePlaceName        State = "place_name"
	StatePlaceType        State = "place_type"
	StatePlacePrice       State = "place_price"
	StatePlaceAddress     State = "place_address"
	StatePlaceDescription State = "place_description"
	StatePlaceLocation    State = "place_location"
)

// billablePlaceTypes get an extra price-category question.
var billablePlaceTypes = map[string]bool{
	"bar":        true,
	"cafe":       true,
	"restaurant": true,
}

func placeFlow() *Flow {
	return &Flow{
		Kind: record.KindPlace,
		Order: []Step{
			{
				State:    StatePlaceName,
				Prompt:   "What is the place called?",
				Field:    "name",
				Validate: titled,
			},
			{
				State:    StatePlaceType,
				Prompt:   "What kind of place is it? (bar, cafe, restaurant, museum, park, location)",
				Field:    "place_type",
				Validate: choice("bar", "cafe", "restaurant", "museum", "park", "location"),
				Next: func(d Draft) State {
					if billablePlaceTypes[d.Text("place_type")] {
						return StatePlacePrice
					}
					return StatePlaceAddress
				},
			},
			{
				State:  StatePlacePrice,
				Prompt: "Price category, 1 (cheap) to 3 (expensive)?",
				Field:  "price_category",
				Validate: func(in Input, _ Draft, _ Env) (Value, error) {
					c, err := oneOf(in.Text, "1", "2", "3")
					if err != nil {
						return Value{}, err
					}
					return NumberValue(float64(c[0] - '0')), nil
				},
			},
			{
				State:    StatePlaceAddress,
				Prompt:   "Address? (or skip)",
				Field:    "address",
				Optional: true,
				Validate: nonEmpty,
			},
			{
				State:    StatePlaceDescription,
				Prompt:   "Anything worth remembering about it? (or skip)",
				Field:    "description",
				Optional: true,
				Validate: nonEmpty,
			},
			{
				State:    StatePlaceLocation,
				Prompt:   "Send a location or coordinates as \"lat, lon\". (or skip)",
				Field:    "location",
				Optional: true,
				Validate: func(in Input, _ Draft, _ Env) (Value, error) {
					if in.Coords != nil {
						return CoordsValue(*in.Coords), nil
					}
					c, err := ParseCoordinates(in.Text)
					if err != nil {
						return Value{}, err
					}
					return CoordsValue(c), nil
				},
			},
		},
		Commit:   commitPlace,
		Editable: placeEditable,
		Patch:    patchPlace,
	}
}

var placeEditable = map[string]State{
	"name":        StatePlaceName,
	"type":        StatePlaceType,
	"price":       StatePlacePrice,
	"address":     StatePlaceAddress,
	"description": StatePlaceDescription,
	"location":    StatePlaceLocation,
}

func commitPlace(d Draft, _ Env) record.Fields {
	f := record.Fields{}
	putText(f, d, "name")
	putText(f, d, "place_type")
	putWhole(f, d, "price_category")
	putText(f, d, "address")
	putText(f, d, "description")
	if v, ok := d.Value("location"); ok && v.Kind == ValueCoords {
		f["latitude"] = v.Coords.Latitude
		f["longitude"] = v.Coords.Longitude
	}
	return f
}

func patchPlace(field string, v Value) (record.Patch, error) {
	p := record.PlacePatch{}
	switch field {
	case "name":
		p.Name = strPtr(v)
	case "type":
		p.PlaceType = strPtr(v)
	case "price":
		p.PriceCategory = intPtr(v)
	case "address":
		p.Address = strPtr(v)
	case "description":
		p.Description = strPtr(v)
	case "location":
		if v.Kind != ValueCoords {
			return nil, invalidf("location must be coordinates")
		}
		lat, lon := v.Coords.Latitude, v.Coords.Longitude
		p.Latitude, p.Longitude = &lat, &lon
	default:
		return nil, unknownEditField(field)
	}
	return p, nil
}
