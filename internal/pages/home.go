package pages

import (
	"context"

	"github.com/eugenenazirov/docs-e2e/internal/artifacts"
	"github.com/eugenenazirov/docs-e2e/internal/browser"
)

var (
	getStartedLink = browser.Link("Get started")
	docsLink       = browser.Link("Docs")
	searchButton   = browser.CSS(`.DocSearch-Button, button[aria-label="Search"]`)
	searchInput    = browser.CSS(`.DocSearch-Input, [placeholder="Search docs"]`)
	mainHeading    = browser.Heading(1)
)

// Home is the documentation landing page.
type Home struct {
	Base
}

// NewHome returns the page object for "/".
func NewHome(page Browser, store *artifacts.Store) *Home {
	return &Home{Base: NewBase(page, "/", store)}
}

// ClickGetStarted follows the primary call to action.
func (h *Home) ClickGetStarted(ctx context.Context) error {
	return h.ClickElement(ctx, getStartedLink)
}

// ClickDocs follows the Docs navigation link.
func (h *Home) ClickDocs(ctx context.Context) error {
	return h.ClickElement(ctx, docsLink)
}

// SearchDocs opens the search dialog, types term and submits it.
func (h *Home) SearchDocs(ctx context.Context, term string) error {
	if visible, err := h.IsVisible(ctx, searchInput); err != nil {
		return err
	} else if !visible {
		if err := h.ClickElement(ctx, searchButton); err != nil {
			return err
		}
	}
	if err := h.FillInput(ctx, searchInput, term); err != nil {
		return err
	}
	return h.page.Press(ctx, "Enter")
}

// MainHeadingText returns the h1 text.
func (h *Home) MainHeadingText(ctx context.Context) (string, error) {
	return h.Text(ctx, mainHeading)
}

// VerifyPageElements checks the landing page renders its key elements.
func (h *Home) VerifyPageElements(ctx context.Context) error {
	for _, sel := range []browser.Selector{getStartedLink, docsLink, mainHeading} {
		if err := h.ExpectVisible(ctx, sel); err != nil {
			return err
		}
	}
	return nil
}
