package runner

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	gherkin "github.com/cucumber/gherkin/go/v26"
	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"
	"go.uber.org/zap"
)

// lineSuffix matches the ":N" godog appends to the uri of a line-filtered pickle.
var lineSuffix = regexp.MustCompile(`:(\d+)$`)

// failures collects the scenarios that failed during one attempt. Scenarios
// may finish concurrently.
type failures struct {
	mu        sync.Mutex
	scenarios []*godog.Scenario
}

func (f *failures) add(sc *godog.Scenario) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scenarios = append(f.scenarios, sc)
}

func (f *failures) list() []*godog.Scenario {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*godog.Scenario(nil), f.scenarios...)
}

// rerunPaths turns failed scenarios into "file.feature:line" paths that
// select only those scenarios. A failure whose line cannot be located puts
// its whole feature file back in the run.
func rerunPaths(failed []*godog.Scenario, logger *zap.Logger) []string {
	byFile := map[string][]*godog.Scenario{}
	for _, sc := range failed {
		uri := lineSuffix.ReplaceAllString(sc.Uri, "")
		byFile[uri] = append(byFile[uri], sc)
	}

	seen := map[string]bool{}
	var paths []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for uri, scenarios := range byFile {
		lines, err := scenarioLines(uri)
		if err != nil {
			logger.Warn("re-running whole feature", zap.String("feature", uri), zap.Error(err))
			add(uri)
			continue
		}
		selected := make([]string, 0, len(scenarios))
		for _, sc := range scenarios {
			line, ok := lines[pickleKey(sc)]
			if !ok {
				// The whole file already covers every line.
				selected = []string{uri}
				break
			}
			selected = append(selected, uri+":"+strconv.FormatInt(line, 10))
		}
		for _, p := range selected {
			add(p)
		}
	}

	sort.Strings(paths)
	return paths
}

// scenarioLines parses a feature file and maps each pickle it produces to
// the line of its Scenario keyword.
func scenarioLines(uri string) (map[string]int64, error) {
	f, err := os.Open(uri)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	newID := (&messages.Incrementing{}).NewId
	doc, err := gherkin.ParseGherkinDocument(f, newID)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", uri, err)
	}
	if doc.Feature == nil {
		return map[string]int64{}, nil
	}

	scenarios := map[string]int64{}
	for _, child := range doc.Feature.Children {
		if child.Scenario != nil {
			scenarios[child.Scenario.Id] = child.Scenario.Location.Line
		}
		if child.Rule != nil {
			for _, rc := range child.Rule.Children {
				if rc.Scenario != nil {
					scenarios[rc.Scenario.Id] = rc.Scenario.Location.Line
				}
			}
		}
	}

	lines := map[string]int64{}
	for _, p := range gherkin.Pickles(*doc, uri, newID) {
		if len(p.AstNodeIds) == 0 {
			continue
		}
		line, ok := scenarios[p.AstNodeIds[0]]
		if !ok {
			continue
		}
		key := pickleKey(p)
		if _, dup := lines[key]; !dup {
			lines[key] = line
		}
	}
	return lines, nil
}

// pickleKey identifies a pickle by content, since ids differ between parses.
func pickleKey(p *messages.Pickle) string {
	parts := make([]string, 0, len(p.Steps)+1)
	parts = append(parts, p.Name)
	for _, st := range p.Steps {
		parts = append(parts, st.Text)
	}
	return strings.Join(parts, "\x00")
}
