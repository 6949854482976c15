// Package composer renders the concrete HTML document delivered to each
// recipient: personalized greeting, sanitized body, optional signature
// footer, wrapped in a fixed email-safe envelope. Rendering is pure and
// does no I/O.
package composer

import (
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/osteele/liquid"

	"github.com/ignite/outreach/internal/domain"
)

// bodyPolicy is the sanitization boundary for user-authored body HTML.
// Allow-list: base rich-text tags plus img, h1, h2, span; style/class
// everywhere, href/target on links, src on images. Everything else is
// stripped, including script, iframe and event handler attributes.
var bodyPolicy = buildBodyPolicy()

func buildBodyPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"a", "b", "blockquote", "br", "caption", "code", "div", "em",
		"h1", "h2", "h3", "h4", "h5", "h6", "hr", "i", "img", "li",
		"ol", "p", "pre", "s", "small", "span", "strong", "sub", "sup",
		"table", "tbody", "td", "tfoot", "th", "thead", "tr", "u", "ul",
	)

	p.AllowAttrs("style", "class").Globally()
	p.AllowAttrs("href", "target").OnElements("a")
	p.AllowAttrs("src").OnElements("img")
	p.AllowURLSchemes("http", "https", "mailto")

	return p
}

// Composer renders messages for one campaign. The body template is
// sanitized once at construction, not per recipient.
type Composer struct {
	cleanBody  string
	footerHTML string
	engine     *liquid.Engine
}

// New prepares a Composer for the given campaign spec.
func New(spec domain.CampaignSpec) *Composer {
	return &Composer{
		cleanBody:  bodyPolicy.Sanitize(spec.BodyTemplate),
		footerHTML: renderFooter(spec.Footer),
		engine:     liquid.NewEngine(),
	}
}

// Render produces the final HTML document for one recipient.
func (c *Composer) Render(recipient domain.ResolvedRecipient) string {
	body := c.personalize(recipient)

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; font-size: 14px; color: #333; line-height: 1.6;">
  <div style="max-width: 600px; margin: 0 auto;">
    <p style="margin-bottom: 20px;">%s</p>

    <div style="margin-bottom: 20px;">
      %s
    </div>

    %s
  </div>
</body>
</html>`, recipient.Greeting(), body, c.footerHTML)
}

// personalize expands Liquid merge tags ({{ name }}, {{ email }}) in the
// sanitized body. Render errors degrade to the raw sanitized body so a
// malformed template never blocks a send.
func (c *Composer) personalize(recipient domain.ResolvedRecipient) string {
	bindings := map[string]interface{}{
		"name":  recipient.Name,
		"email": recipient.Email,
	}
	out, err := c.engine.ParseAndRenderString(c.cleanBody, bindings)
	if err != nil {
		return c.cleanBody
	}
	return out
}
