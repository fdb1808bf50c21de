package site

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// Hero is the top of the home page. First-time visitors get an extra intro line.
func Hero(firstVisit bool) g.Node {
	return Section(
		ID("hero"),
		Class("hero"),
		g.If(firstVisit,
			Div(
				Class("welcome-banner"),
				g.Attr("role", "status"),
				g.Text("New here? ZeroVacancy matches property managers with local content creators. Join the waitlist for early access."),
			),
		),
		H1(
			g.Text("Property content that "),
			Span(Class("gradient-text"), g.Text("fills vacancies")),
		),
		P(
			Class("lead"),
			g.Text("Book vetted photographers, videographers and 3D tour creators for your listings. Fixed prices, fast turnaround, full usage rights."),
		),
		Div(
			Class("hero-actions"),
			A(Href("#waitlist"), Class("btn btn-primary"), Icon("lucide--sparkles", ""), g.Text("Join the waitlist")),
			A(Href("#how-it-works"), Class("btn btn-ghost"), Icon("lucide--arrow-down", ""), g.Text("How it works")),
		),
	)
}

type howStep struct {
	Icon, Title, Description string
}

func HowItWorks() g.Node {
	steps := []howStep{
		{"lucide--clipboard-list", "Describe the shoot", "Tell us about the property, the deliverables you need and when the unit is available."},
		{"lucide--users", "Match with a creator", "We suggest vetted creators near the property with the right gear and portfolio."},
		{"lucide--image", "Get listing-ready content", "Edited photos, video and tours land in your account, licensed for every channel."},
	}
	return Section(
		Class("section"),
		SectionHeading("how-it-works", "lucide--route", "How it works", "From request to published listing in three steps."),
		Ol(
			Class("steps"),
			g.Group(g.Map(steps, func(s howStep) g.Node {
				return Li(
					Class("card"),
					IconBadge(s.Icon, "secondary"),
					H3(g.Text(s.Title)),
					P(Class("muted"), g.Text(s.Description)),
				)
			})),
		),
	)
}

type feature struct {
	Icon        string
	Title       string
	Description string
	Color       string
}

func Features() g.Node {
	features := []feature{
		{"lucide--camera", "Professional photography", "HDR interiors, exteriors and amenity shots edited for listing sites.", "primary"},
		{"lucide--video", "Walkthrough video", "Short-form tours for social channels and long-form for listing pages.", "secondary"},
		{"lucide--box", "3D and virtual tours", "Immersive tours that let renters explore before they visit.", "accent"},
		{"lucide--plane", "Drone and twilight", "Aerial context and golden-hour shots that stand out in search.", "primary"},
		{"lucide--badge-check", "Vetted creators", "Every creator is reviewed for quality, insurance and reliability.", "secondary"},
		{"lucide--shield-check", "Usage rights included", "Use the content anywhere you market the property, no extra fees.", "accent"},
	}
	return Section(
		Class("section"),
		SectionHeading("features", "lucide--sparkles", "Everything a listing needs", ""),
		Div(
			Class("feature-grid"),
			g.Group(g.Map(features, func(f feature) g.Node {
				return Div(
					Class("card"),
					IconBadge(f.Icon, f.Color),
					H3(g.Text(f.Title)),
					P(Class("muted"), g.Text(f.Description)),
				)
			})),
		),
	)
}
