package site

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// WaitlistFormState carries a submission back into the form after a
// script-less post.
type WaitlistFormState struct {
	Email   string
	Consent bool
	Error   string
	Notice  string
}

// WaitlistForm posts to /waitlist without scripts; waitlist.js intercepts the
// submit, validates the address and posts JSON to /api/waitlist instead.
func WaitlistForm(st WaitlistFormState) g.Node {
	msgClass, msg := "form-message", st.Notice
	if st.Error != "" {
		msgClass, msg = "form-message error", st.Error
	}

	return Section(
		Class("section waitlist"),
		SectionHeading("waitlist", "lucide--mail", "Join the waitlist", "Be first to book creators when we launch in your city."),
		Form(
			Method("post"),
			Action("/waitlist"),
			g.Attr("data-waitlist-form", ""),
			g.Attr("data-endpoint", "/api/waitlist"),
			g.Attr("novalidate", ""),
			Input(Type("hidden"), Name("source"), Value("landing_page")),
			Label(g.Attr("for", "waitlist-email"), Class("sr-only"), g.Text("Email address")),
			Input(
				ID("waitlist-email"),
				Name("email"),
				Type("email"),
				Value(st.Email),
				Placeholder("you@company.com"),
				AutoComplete("email"),
				Required(),
			),
			Label(
				Class("consent"),
				Input(Type("checkbox"), Name("marketingConsent"), Value("true"), g.If(st.Consent, Checked())),
				g.Text("Send me product updates"),
			),
			Button(Type("submit"), Class("btn btn-primary"), g.Text("Join")),
			P(Class(msgClass), g.Attr("aria-live", "polite"), g.Text(msg)),
		),
	)
}
