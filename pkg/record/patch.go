package record

// Patch is a typed partial update for one record kind. Each patch struct
// enumerates the updatable fields of its entity; nil pointers mean "leave
// unchanged". Changes flattens the set fields into a Fields map that a
// Gateway implementation compiles into its native update call.
type Patch interface {
	Changes() Fields
}

type PlacePatch struct {
	Name          *string
	PlaceType     *string
	PriceCategory *int
	Address       *string
	Description   *string
	Latitude      *float64
	Longitude     *float64
}

func (p PlacePatch) Changes() Fields {
	f := Fields{}
	putStr(f, "name", p.Name)
	putStr(f, "place_type", p.PlaceType)
	putInt(f, "price_category", p.PriceCategory)
	putStr(f, "address", p.Address)
	putStr(f, "description", p.Description)
	putFloat(f, "latitude", p.Latitude)
	putFloat(f, "longitude", p.Longitude)
	return f
}

type ExpensePatch struct {
	Category *string
	Name     *string
	Amount   *float64
	Date     *string
	Note     *string
}

func (p ExpensePatch) Changes() Fields {
	f := Fields{}
	putStr(f, "category", p.Category)
	putStr(f, "name", p.Name)
	putFloat(f, "amount", p.Amount)
	putStr(f, "date", p.Date)
	putStr(f, "note", p.Note)
	return f
}

type MediaPatch struct {
	Title    *string
	Year     *int
	Genre    *string
	Status   *string
	Rating   *int
	Seasons  *int
	Episodes *int
}

func (p MediaPatch) Changes() Fields {
	f := Fields{}
	putStr(f, "title", p.Title)
	putInt(f, "year", p.Year)
	putStr(f, "genre", p.Genre)
	putStr(f, "status", p.Status)
	putInt(f, "rating", p.Rating)
	putInt(f, "seasons", p.Seasons)
	putInt(f, "episodes", p.Episodes)
	return f
}

type NotePatch struct {
	Title *string
	Body  *string
}

func (p NotePatch) Changes() Fields {
	f := Fields{}
	putStr(f, "title", p.Title)
	putStr(f, "body", p.Body)
	return f
}

type WishlistPatch struct {
	Title *string
	Price *float64
	URL   *string
}

func (p WishlistPatch) Changes() Fields {
	f := Fields{}
	putStr(f, "title", p.Title)
	putFloat(f, "price", p.Price)
	putStr(f, "url", p.URL)
	return f
}

type TipsPatch struct {
	Amount *float64
	Hours  *float64
}

func (p TipsPatch) Changes() Fields {
	f := Fields{}
	putFloat(f, "amount", p.Amount)
	putFloat(f, "hours", p.Hours)
	return f
}

// ReminderPatch updates the typed reminder columns. Gateway
// implementations are expected to recognise it and update the reminder
// storage rather than the schemaless field set.
type ReminderPatch struct {
	Note     *string
	At       *string
	Priority *int
	Repeat   *Repeat
}

func (p ReminderPatch) Changes() Fields {
	f := Fields{}
	putStr(f, "note", p.Note)
	putStr(f, "at", p.At)
	putInt(f, "priority", p.Priority)
	if p.Repeat != nil {
		f["repeat"] = string(*p.Repeat)
	}
	return f
}

func putStr(f Fields, key string, v *string) {
	if v != nil {
		f[key] = *v
	}
}

func putInt(f Fields, key string, v *int) {
	if v != nil {
		f[key] = *v
	}
}

func putFloat(f Fields, key string, v *float64) {
	if v != nil {
		f[key] = *v
	}
}
