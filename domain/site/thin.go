package site

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// HandoffProps describes a page that forwards to a hosted third-party flow.
type HandoffProps struct {
	Heading     string
	Description string
	ActionLabel string
	URL         string
}

// HandoffPage renders a single call to action pointing at the hosted flow.
// Without a configured URL the page explains that the flow is unavailable.
func HandoffPage(p HandoffProps) g.Node {
	return Section(
		Class("section handoff"),
		H1(g.Text(p.Heading)),
		P(Class("lead"), g.Text(p.Description)),
		g.If(p.URL != "",
			A(Href(p.URL), Class("btn btn-primary"), g.Attr("rel", "noopener"), g.Text(p.ActionLabel)),
		),
		g.If(p.URL == "",
			P(Class("form-message error"), g.Attr("role", "alert"), g.Text("This is not available yet. Join the waitlist and we will let you know.")),
		),
		P(A(Href("/"), g.Text("Back to home"))),
	)
}
