package browser

import (
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"
)

// Selector locates an element either by CSS or by XPath.
type Selector struct {
	Query string
	XPath bool
}

// CSS builds a CSS selector.
func CSS(query string) Selector {
	return Selector{Query: query}
}

// XPath builds an XPath selector.
func XPath(query string) Selector {
	return Selector{Query: query, XPath: true}
}

// Link matches an anchor or role=link element whose text contains name, ignoring case.
func Link(name string) Selector {
	return XPath(fmt.Sprintf(`//*[(self::a and @href) or @role="link"][%s]`, textContainsFold(name)))
}

// Button matches a button or role=button element whose text contains name, ignoring case.
func Button(name string) Selector {
	return XPath(fmt.Sprintf(`//*[self::button or @role="button"][%s]`, textContainsFold(name)))
}

// Heading matches a heading of the given level.
func Heading(level int) Selector {
	return CSS(fmt.Sprintf(`h%d, [role="heading"][aria-level="%d"]`, level, level))
}

// Text matches the first element that owns a text node containing text.
func Text(text string) Selector {
	return XPath(fmt.Sprintf(`//*[text()[contains(normalize-space(.), %s)]]`, xpathLiteral(text)))
}

// Placeholder matches an input by its placeholder attribute.
func Placeholder(placeholder string) Selector {
	return CSS(fmt.Sprintf(`[placeholder="%s"]`, cssEscape(placeholder)))
}

func (s Selector) String() string {
	return s.Query
}

func (s Selector) by() chromedp.QueryOption {
	if s.XPath {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

const (
	upper = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lower = "abcdefghijklmnopqrstuvwxyz"
)

func textContainsFold(s string) string {
	return fmt.Sprintf(`contains(translate(normalize-space(.), "%s", "%s"), %s)`,
		upper, lower, xpathLiteral(strings.ToLower(s)))
}

// xpathLiteral quotes s for XPath 1.0, which has no escape sequences.
func xpathLiteral(s string) string {
	if !strings.Contains(s, `'`) {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}

	parts := strings.Split(s, `'`)
	quoted := make([]string, 0, len(parts)*2)
	for i, part := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		if part != "" {
			quoted = append(quoted, "'"+part+"'")
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

func cssEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
