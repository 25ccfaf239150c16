package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"github.com/eugenenazirov/docs-e2e/internal/apiclient"
)

func registerAPISteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^the "([^"/]+)/([^"/]+)" repository should be named "([^"]*)"$`, theRepositoryShouldBeNamed)
}

func theRepositoryShouldBeNamed(ctx context.Context, owner, name, want string) error {
	w, ok := WorldFrom(ctx)
	if !ok || w.api == nil {
		return apiclient.ErrNoAPIURL
	}

	repo, err := w.api.Repository(ctx, owner, name)
	if err != nil {
		return err
	}
	if repo.Name != want {
		return fmt.Errorf("expected repository %s/%s to be named %q, got %q", owner, name, want, repo.Name)
	}
	if !strings.EqualFold(repo.FullName, owner+"/"+name) {
		return fmt.Errorf("unexpected full name %q for %s/%s", repo.FullName, owner, name)
	}
	return nil
}
