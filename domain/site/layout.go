package site

import (
	"strconv"
	"time"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

type PageConfig struct {
	Title       string
	Description string
	OGImage     string
	SiteName    string
	Year        int
}

func Layout(config PageConfig, content ...g.Node) g.Node {
	if config.SiteName == "" {
		config.SiteName = "ZeroVacancy"
	}
	if config.Title == "" {
		config.Title = config.SiteName + " - Property content that fills vacancies"
	}
	if config.Description == "" {
		config.Description = "Book vetted photographers, videographers and 3D tour creators for your rental listings."
	}
	if config.Year == 0 {
		config.Year = time.Now().Year()
	}

	return g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1.0")),
				TitleEl(g.Text(config.Title)),
				Meta(Name("description"), Content(config.Description)),

				Meta(g.Attr("property", "og:title"), Content(config.Title)),
				Meta(g.Attr("property", "og:description"), Content(config.Description)),
				Meta(g.Attr("property", "og:type"), Content("website")),
				g.If(config.OGImage != "", Meta(g.Attr("property", "og:image"), Content(config.OGImage))),

				Link(Rel("stylesheet"), Href("/static/styles.css")),
				Script(Src("https://code.iconify.design/1/1.0.7/iconify.min.js")),
			),
			Body(
				Topbar(),
				Main(g.Group(content)),
				PageFooter(config.SiteName, config.Year),

				Script(Type("module"), Src("/static/js/location-input.js")),
				Script(Type("module"), Src("/static/js/waitlist.js")),
			),
		),
	})
}

func Topbar() g.Node {
	links := []struct{ Href, Label string }{
		{"/#how-it-works", "How it works"},
		{"/#search", "Find creators"},
		{"/#pricing", "Pricing"},
		{"/#waitlist", "Join waitlist"},
	}
	return Header(
		Class("topbar"),
		Logo(),
		Nav(
			Class("topbar-links"),
			g.Group(g.Map(links, func(l struct{ Href, Label string }) g.Node {
				return A(Href(l.Href), g.Text(l.Label))
			})),
		),
		Div(
			Class("topbar-actions"),
			A(Href("/auth"), Class("btn btn-ghost btn-sm"), g.Text("Sign in")),
			A(Href("/account"), Class("btn btn-primary btn-sm"), g.Text("Account")),
		),
	)
}

func PageFooter(siteName string, year int) g.Node {
	return Div(
		Class("page-footer"),
		Div(
			Class("footer-grid"),
			Div(
				Logo(),
				P(Class("muted"), g.Text("Content that converts, from creators who know real estate.")),
			),
			Div(
				P(Class("footer-title"), g.Text("Marketplace")),
				A(Href("/#search"), g.Text("Find creators")),
				A(Href("/connect/onboarding"), g.Text("Become a creator")),
				A(Href("/#pricing"), g.Text("Pricing")),
			),
			Div(
				P(Class("footer-title"), g.Text("Account")),
				A(Href("/auth"), g.Text("Sign in")),
				A(Href("/account"), g.Text("Manage subscription")),
			),
		),
		P(Class("footer-legal"), g.Text("© "+strconv.Itoa(year)+" "+siteName+". All rights reserved.")),
	)
}
