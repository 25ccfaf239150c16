package steps

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/eugenenazirov/docs-e2e/internal/browser"
	"github.com/eugenenazirov/docs-e2e/internal/helpers"
)

const (
	siteName = "Playwright"

	mobileWidth  = 375
	mobileHeight = 667

	resultsTimeout = 5 * time.Second
	pollInterval   = 200 * time.Millisecond
)

var (
	installationText = browser.Text("Installation")
	mobileMenu       = browser.CSS(`[aria-label*="menu"], [data-testid*="menu"], .mobile-menu, button[aria-expanded]`)
	navigation       = browser.CSS(`nav, [role="navigation"]`)
)

func registerNavigationSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^I am on the Playwright homepage$`, iAmOnTheHomepage)
	ctx.Step(`^I navigate to the homepage$`, iNavigateToTheHomepage)
	ctx.Step(`^I am using a mobile device$`, iAmUsingAMobileDevice)
	ctx.Step(`^I click on the "([^"]*)" link$`, iClickOnTheLink)
	ctx.Step(`^I search for "([^"]*)"$`, iSearchFor)
	ctx.Step(`^I should be on the getting started page$`, iShouldBeOnTheGettingStartedPage)
	ctx.Step(`^I should be on the "([^"]*)" page$`, iShouldBeOnThePage)
	ctx.Step(`^the page should contain installation instructions$`, thePageShouldContainInstallationInstructions)
	ctx.Step(`^the page title should contain "([^"]*)"$`, thePageTitleShouldContain)
	ctx.Step(`^I should see search results$`, iShouldSeeSearchResults)
	ctx.Step(`^the results should contain relevant API information$`, theResultsShouldContainAPIInformation)
	ctx.Step(`^the mobile menu should be accessible$`, theMobileMenuShouldBeAccessible)
	ctx.Step(`^all navigation elements should be visible$`, allNavigationElementsShouldBeVisible)
}

// world returns the scenario world and fails unless a page is open.
func world(ctx context.Context) (*World, error) {
	w, ok := WorldFrom(ctx)
	if !ok || w.page == nil {
		return nil, browser.ErrNoPage
	}
	return w, nil
}

func iAmOnTheHomepage(ctx context.Context) error {
	if err := iNavigateToTheHomepage(ctx); err != nil {
		return err
	}
	return thePageTitleShouldContain(ctx, siteName)
}

func iNavigateToTheHomepage(ctx context.Context) error {
	w, err := world(ctx)
	if err != nil {
		return err
	}
	if err := w.home.Navigate(ctx); err != nil {
		return err
	}
	return w.home.WaitForLoad(ctx)
}

func iAmUsingAMobileDevice(ctx context.Context) error {
	w, ok := WorldFrom(ctx)
	if !ok || w.browser == nil {
		return fmt.Errorf("mobile device: %w", browser.ErrNoPage)
	}
	page, err := w.browser.NewPage(ctx)
	if err != nil {
		return fmt.Errorf("open mobile page: %w", err)
	}
	if err := page.SetViewport(ctx, mobileWidth, mobileHeight); err != nil {
		return err
	}
	w.setPage(page, w.home.Store())
	return nil
}

func iClickOnTheLink(ctx context.Context, linkText string) error {
	w, err := world(ctx)
	if err != nil {
		return err
	}
	if err := w.home.ClickElement(ctx, browser.Link(linkText)); err != nil {
		return err
	}
	return w.home.WaitForLoad(ctx)
}

func iSearchFor(ctx context.Context, term string) error {
	w, err := world(ctx)
	if err != nil {
		return err
	}
	return w.home.SearchDocs(ctx, term)
}

func iShouldBeOnTheGettingStartedPage(ctx context.Context) error {
	return iShouldBeOnThePage(ctx, "intro")
}

func iShouldBeOnThePage(ctx context.Context, expected string) error {
	w, err := world(ctx)
	if err != nil {
		return err
	}
	current, err := w.home.CurrentURL(ctx)
	if err != nil {
		return err
	}
	if !strings.Contains(current, expected) {
		return fmt.Errorf("expected URL %q to contain %q", current, expected)
	}
	return nil
}

func thePageShouldContainInstallationInstructions(ctx context.Context) error {
	w, err := world(ctx)
	if err != nil {
		return err
	}
	return w.home.ExpectVisible(ctx, installationText)
}

func thePageTitleShouldContain(ctx context.Context, text string) error {
	w, err := world(ctx)
	if err != nil {
		return err
	}
	title, err := w.home.Title(ctx)
	if err != nil {
		return err
	}
	if !helpers.ContainsText(title, text, true) {
		return fmt.Errorf("expected title %q to contain %q", title, text)
	}
	return nil
}

func iShouldSeeSearchResults(ctx context.Context) error {
	w, err := world(ctx)
	if err != nil {
		return err
	}
	var last string
	err = helpers.WaitForCondition(ctx, resultsTimeout, pollInterval, func(ctx context.Context) (bool, error) {
		current, err := w.home.CurrentURL(ctx)
		if err != nil {
			return false, err
		}
		last = current
		return strings.Contains(current, "search") || strings.Contains(current, "?q="), nil
	})
	if err != nil {
		return fmt.Errorf("expected search results, last URL %q: %w", last, err)
	}
	return nil
}

func theResultsShouldContainAPIInformation(ctx context.Context) error {
	w, err := world(ctx)
	if err != nil {
		return err
	}
	html, err := w.page.Content(ctx)
	if err != nil {
		return err
	}
	if !helpers.ContainsText(html, "api", false) && !helpers.ContainsText(html, "testing", false) {
		return fmt.Errorf("expected page content to mention API or testing")
	}
	return nil
}

func theMobileMenuShouldBeAccessible(ctx context.Context) error {
	w, err := world(ctx)
	if err != nil {
		return err
	}
	return w.home.ExpectVisible(ctx, mobileMenu)
}

func allNavigationElementsShouldBeVisible(ctx context.Context) error {
	w, err := world(ctx)
	if err != nil {
		return err
	}
	return w.home.ExpectVisible(ctx, navigation)
}
