package dialog

import (
	"net/url"
	"strings"

	"github.com/chatassist/dialog-manager/pkg/record"
)

const (
	StateWishlistTitle State = "wishlist_title"
	StateWishlistPrice State = "wishlist_price"
	StateWishlistURL   State = "wishlist_url"
)

func wishlistFlow() *Flow {
	return &Flow{
		Kind: record.KindWishlist,
		Order: []Step{
			{
				State:    StateWishlistTitle,
				Prompt:   "What do you want?",
				Field:    "title",
				Validate: titled,
			},
			{
				State:    StateWishlistPrice,
				Prompt:   "Roughly how much does it cost? (or skip)",
				Field:    "price",
				Optional: true,
				Validate: amount,
			},
			{
				State:    StateWishlistURL,
				Prompt:   "A link to it? (or skip)",
				Field:    "url",
				Optional: true,
				Validate: func(in Input, _ Draft, _ Env) (Value, error) {
					s := strings.TrimSpace(in.Text)
					u, err := url.Parse(s)
					if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
						return Value{}, invalidf("that does not look like an http(s) link")
					}
					return TextValue(s), nil
				},
			},
		},
		Commit: func(d Draft, _ Env) record.Fields {
			f := record.Fields{}
			putText(f, d, "title")
			putNumber(f, d, "price")
			putText(f, d, "url")
			return f
		},
		Editable: wishlistEditable,
		Patch:    patchWishlist,
	}
}

var wishlistEditable = map[string]State{
	"title": StateWishlistTitle,
	"price": StateWishlistPrice,
	"url":   StateWishlistURL,
}

func patchWishlist(field string, v Value) (record.Patch, error) {
	p := record.WishlistPatch{}
	switch field {
	case "title":
		p.Title = strPtr(v)
	case "price":
		p.Price = numPtr(v)
	case "url":
		p.URL = strPtr(v)
	default:
		return nil, unknownEditField(field)
	}
	return p, nil
}
