package dialog

import (
	"github.com/chatassist/dialog-manager/pkg/record"
)

const (
	StateMediaType     State = "media_type"
	StateMediaTitle    State = "media_title"
	StateMediaYear     State = "media_year"
	StateMediaGenre    State = "media_genre"
	StateMediaSeasons  State = "media_seasons"
	StateMediaEpisodes State = "media_episodes"
	StateMediaStatus   State = "media_status"
	StateMediaRating   State = "media_rating"
)

func mediaFlow() *Flow {
	return &Flow{
		Kind: record.KindMedia,
		Order: []Step{
			{
				State:    StateMediaType,
				Prompt:   "Movie or series?",
				Field:    "media_type",
				Validate: choice("movie", "series"),
			},
			{
				State:    StateMediaTitle,
				Prompt:   "Title?",
				Field:    "title",
				Validate: titled,
			},
			{
				State:  StateMediaYear,
				Prompt: "Release year?",
				Field:  "year",
				Validate: func(in Input, _ Draft, _ Env) (Value, error) {
					y, err := ParseYear(in.Text)
					if err != nil {
						return Value{}, err
					}
					return NumberValue(float64(y)), nil
				},
			},
			{
				State:    StateMediaGenre,
				Prompt:   "Genre?",
				Field:    "genre",
				Validate: nonEmpty,
				Next: func(d Draft) State {
					if d.Text("media_type") == "series" {
						return StateMediaSeasons
					}
					return StateMediaStatus
				},
			},
			{
				State:    StateMediaSeasons,
				Prompt:   "How many seasons?",
				Field:    "seasons",
				Validate: countValidator,
			},
			{
				State:    StateMediaEpisodes,
				Prompt:   "How many episodes?",
				Field:    "episodes",
				Validate: countValidator,
				Next:     func(Draft) State { return StateMediaStatus },
			},
			{
				State:    StateMediaStatus,
				Prompt:   "Status? (watched, watching, planned)",
				Field:    "status",
				Validate: choice("watched", "watching", "planned"),
			},
			{
				State:    StateMediaRating,
				Prompt:   "Rating 1-5? (or skip)",
				Field:    "rating",
				Optional: true,
				Validate: func(in Input, _ Draft, _ Env) (Value, error) {
					r, err := ParseRating(in.Text)
					if err != nil {
						return Value{}, err
					}
					return NumberValue(float64(r)), nil
				},
			},
		},
		Commit:   commitMedia,
		Editable: mediaEditable,
		Patch:    patchMedia,
	}
}

func countValidator(in Input, _ Draft, _ Env) (Value, error) {
	n, err := ParseCount(in.Text)
	if err != nil {
		return Value{}, err
	}
	return NumberValue(float64(n)), nil
}

var mediaEditable = map[string]State{
	"title":    StateMediaTitle,
	"year":     StateMediaYear,
	"genre":    StateMediaGenre,
	"seasons":  StateMediaSeasons,
	"episodes": StateMediaEpisodes,
	"status":   StateMediaStatus,
	"rating":   StateMediaRating,
}

func commitMedia(d Draft, _ Env) record.Fields {
	f := record.Fields{}
	putText(f, d, "media_type")
	putText(f, d, "title")
	putWhole(f, d, "year")
	putText(f, d, "genre")
	putWhole(f, d, "seasons")
	putWhole(f, d, "episodes")
	putText(f, d, "status")
	putWhole(f, d, "rating")
	return f
}

func patchMedia(field string, v Value) (record.Patch, error) {
	p := record.MediaPatch{}
	switch field {
	case "title":
		p.Title = strPtr(v)
	case "year":
		p.Year = intPtr(v)
	case "genre":
		p.Genre = strPtr(v)
	case "seasons":
		p.Seasons = intPtr(v)
	case "episodes":
		p.Episodes = intPtr(v)
	case "status":
		p.Status = strPtr(v)
	case "rating":
		p.Rating = intPtr(v)
	default:
		return nil, unknownEditField(field)
	}
	return p, nil
}
