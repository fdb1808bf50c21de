package site

import (
	"strconv"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/zerovacancy/zerovacancy/domain/locations"
)

// SearchPreviewProps configures the location input. Results are rendered
// server-side when the page is requested with ?q=, so the section works
// without scripts; the script takes over keystrokes when it loads.
type SearchPreviewProps struct {
	Query       string
	Suggestions locations.GroupedSuggestions
	MinLength   int
	DebounceMs  int64
}

func SearchPreview(p SearchPreviewProps) g.Node {
	showing := p.Suggestions.Len() > 0
	return Section(
		Class("section"),
		SectionHeading("search", "lucide--map-pin", "Find creators near your property", "Search by city or zip code."),
		Form(
			Class("location-input"),
			Method("get"),
			Action("/#search"),
			g.Attr("role", "search"),
			g.Attr("data-location-input", ""),
			g.Attr("data-suggest-url", "/api/locations/suggest"),
			g.Attr("data-min-length", strconv.Itoa(p.MinLength)),
			g.Attr("data-debounce-ms", strconv.FormatInt(p.DebounceMs, 10)),
			Label(g.Attr("for", "location-query"), Class("sr-only"), g.Text("City or zip code")),
			Input(
				ID("location-query"),
				Name("q"),
				Type("text"),
				Value(p.Query),
				Placeholder("City or zip code"),
				AutoComplete("off"),
				g.Attr("role", "combobox"),
				g.Attr("aria-autocomplete", "list"),
				g.Attr("aria-controls", "location-suggestions"),
				g.Attr("aria-expanded", strconv.FormatBool(showing)),
			),
			Span(Class("loading-indicator"), g.Attr("hidden", ""), g.Attr("aria-hidden", "true")),
			Button(Type("submit"), Class("btn btn-primary"), g.Text("Search")),
			suggestionList(p.Suggestions, showing),
		),
	)
}

func suggestionList(s locations.GroupedSuggestions, showing bool) g.Node {
	idx := 0
	option := func(label string, zip bool) g.Node {
		n := Li(
			ID("location-option-"+strconv.Itoa(idx)),
			g.Attr("role", "option"),
			g.Attr("data-index", strconv.Itoa(idx)),
			g.Attr("data-value", label),
			g.If(zip, Class("zip")),
			g.Text(label),
		)
		idx++
		return n
	}

	var groups []g.Node
	if len(s.Cities) > 0 {
		items := make([]g.Node, 0, len(s.Cities))
		for _, c := range s.Cities {
			items = append(items, option(c.Label(), false))
		}
		groups = append(groups, Li(Class("group-label"), g.Attr("role", "presentation"), g.Text("Cities")), g.Group(items))
	}
	if len(s.ZipCodes) > 0 {
		items := make([]g.Node, 0, len(s.ZipCodes))
		for _, z := range s.ZipCodes {
			items = append(items, option(z.Zip, true))
		}
		groups = append(groups, Li(Class("group-label"), g.Attr("role", "presentation"), g.Text("Zip codes")), g.Group(items))
	}

	return Ul(
		ID("location-suggestions"),
		Class("suggestions"),
		g.Attr("role", "listbox"),
		g.If(!showing, g.Attr("hidden", "")),
		g.Group(groups),
	)
}
