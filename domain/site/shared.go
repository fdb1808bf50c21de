package site

import (
	"fmt"
	"strings"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

func Logo() g.Node {
	return A(
		Href("/"),
		Class("logo"),
		Span(Class("logo-mark"), g.Text("ZV")),
		Span(Class("logo-text"), g.Text("ZeroVacancy")),
	)
}

func convertIconName(iconClass string) string {
	parts := strings.Fields(iconClass)
	if len(parts) == 0 {
		return ""
	}
	return strings.Replace(parts[0], "--", ":", 1)
}

// Icon renders an iconify placeholder; an empty label hides it from screen readers.
func Icon(iconClass, ariaLabel string) g.Node {
	classes := "iconify"
	if parts := strings.Fields(iconClass); len(parts) > 1 {
		classes = fmt.Sprintf("iconify %s", strings.Join(parts[1:], " "))
	}
	if ariaLabel != "" {
		return Span(
			Class(classes),
			g.Attr("data-icon", convertIconName(iconClass)),
			g.Attr("role", "img"),
			g.Attr("aria-label", ariaLabel),
		)
	}
	return Span(
		Class(classes),
		g.Attr("data-icon", convertIconName(iconClass)),
		g.Attr("aria-hidden", "true"),
	)
}

func IconBadge(icon, color string) g.Node {
	return Span(
		Class(fmt.Sprintf("icon-badge icon-badge-%s", color)),
		Icon(icon, ""),
	)
}

// SectionHeading is the centred title block used by every home page section.
func SectionHeading(id, icon, title, subtitle string) g.Node {
	return Div(
		Class("section-heading"),
		IconBadge(icon, "primary"),
		H2(ID(id), g.Text(title)),
		g.If(subtitle != "", P(Class("muted"), g.Text(subtitle))),
	)
}
