package site

import (
	"fmt"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/zerovacancy/zerovacancy/domain/pricing"
)

// PricingSection renders plan cards for cycle. The toggle is a pair of links
// so the derived prices always come from the server.
func PricingSection(cycle pricing.Cycle, quotes []pricing.Quote, checkoutURL string) g.Node {
	return Section(
		Class("section"),
		SectionHeading("pricing", "lucide--tag", "Simple, predictable pricing", "Switch to annual billing and save."),
		Div(
			Class("cycle-toggle"),
			g.Attr("role", "group"),
			g.Attr("aria-label", "Billing cycle"),
			cycleLink(pricing.Monthly, "Monthly", cycle),
			cycleLink(pricing.Annual, "Annual", cycle),
		),
		Div(
			Class("pricing-grid"),
			g.Group(g.Map(quotes, func(q pricing.Quote) g.Node {
				return planCard(q, checkoutURL)
			})),
		),
	)
}

func cycleLink(c pricing.Cycle, label string, current pricing.Cycle) g.Node {
	return A(
		Href("/?cycle="+string(c)+"#pricing"),
		Class("btn btn-sm"),
		g.If(c == current, g.Group([]g.Node{Class("active"), g.Attr("aria-current", "true")})),
		g.Text(label),
	)
}

func planCard(q pricing.Quote, checkoutURL string) g.Node {
	p := q.Plan

	price := pricing.FormatCents(q.PerMonthCents)
	var note string
	switch {
	case p.Free():
		price, note = "Free", "No card required"
	case q.Cycle == pricing.Annual:
		note = fmt.Sprintf("%s billed yearly, save %s", pricing.FormatCents(q.PriceCents), pricing.FormatCents(q.SavingsCents))
	default:
		note = "Billed monthly"
	}

	href := "/auth?plan=" + p.ID + "&cycle=" + string(q.Cycle)
	if checkoutURL != "" && !p.Free() {
		href = checkoutURL + "?plan=" + p.ID + "&cycle=" + string(q.Cycle)
	}

	class := "card plan"
	if p.Highlighted {
		class += " highlighted"
	}
	cta := p.CTA
	if cta == "" {
		cta = "Choose " + p.Name
	}

	return Div(
		Class(class),
		g.Attr("data-plan", p.ID),
		g.If(p.Highlighted, Span(Class("badge"), g.Text("Most popular"))),
		H3(g.Text(p.Name)),
		P(Class("muted"), g.Text(p.Tagline)),
		P(
			Class("price"),
			Span(Class("amount"), g.Text(price)),
			g.If(!p.Free(), Span(Class("per"), g.Text("/mo"))),
		),
		P(Class("price-note"), g.Text(note)),
		Ul(
			Class("plan-features"),
			g.Group(g.Map(p.Features, func(f string) g.Node {
				return Li(Icon("lucide--check", ""), g.Text(f))
			})),
		),
		A(Href(href), Class("btn btn-primary"), g.Text(cta)),
	)
}
