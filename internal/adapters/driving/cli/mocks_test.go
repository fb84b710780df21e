package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/custodia-labs/studyrag/internal/connectors/filesystem"
	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driving"
	"github.com/custodia-labs/studyrag/internal/core/services"
)

// mockCatalog serves a fixed set of units.
type mockCatalog struct {
	units       []domain.UnitDescriptor
	invalidated int
}

func (m *mockCatalog) ListCollections(context.Context) []string {
	return distinct(m.units, func(u domain.UnitDescriptor) string { return u.Collection })
}

func (m *mockCatalog) ListSubcollections(_ context.Context, collection string) []string {
	return distinct(m.filter(collection, ""), func(u domain.UnitDescriptor) string { return u.Subcollection })
}

func (m *mockCatalog) ListUnits(_ context.Context, collection, subcollection string) []domain.UnitDescriptor {
	return m.filter(collection, subcollection)
}

func (m *mockCatalog) DescribeScope(scope domain.Scope) string {
	return services.NewCatalog(nil).DescribeScope(scope)
}

func (m *mockCatalog) Invalidate() {
	m.invalidated++
}

func (m *mockCatalog) filter(collection, subcollection string) []domain.UnitDescriptor {
	var out []domain.UnitDescriptor
	for _, u := range m.units {
		if collection != "" && !strings.EqualFold(u.Collection, collection) {
			continue
		}
		if subcollection != "" && !strings.EqualFold(u.Subcollection, subcollection) {
			continue
		}
		out = append(out, u)
	}
	return out
}

func distinct(units []domain.UnitDescriptor, key func(domain.UnitDescriptor) string) []string {
	seen := map[string]bool{}
	var out []string
	for _, u := range units {
		if k := key(u); !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// mockAgent records the scope of every question.
type mockAgent struct {
	answer    string
	err       error
	questions []string
	scopes    []domain.Scope
}

func (m *mockAgent) Ask(_ context.Context, conv *domain.Conversation, question string) (string, error) {
	m.questions = append(m.questions, question)
	m.scopes = append(m.scopes, conv.Scope)
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

// mockIngestion replays progress events and returns a fixed run.
type mockIngestion struct {
	progress []driving.IngestProgress
	run      *domain.IngestionRun
	err      error
	opts     []driving.IngestOptions

	runs     []domain.IngestionRun
	runsErr  error
	runLimit int
}

func (m *mockIngestion) Run(_ context.Context, opts driving.IngestOptions) (*domain.IngestionRun, error) {
	m.opts = append(m.opts, opts)
	if opts.Progress != nil {
		for _, p := range m.progress {
			opts.Progress(p)
		}
	}
	return m.run, m.err
}

func (m *mockIngestion) Runs(_ context.Context, limit int) ([]domain.IngestionRun, error) {
	m.runLimit = limit
	return m.runs, m.runsErr
}

// mockSettings is an in-memory settings service.
type mockSettings struct {
	settings      domain.AppSettings
	set           map[string]string
	setErr        error
	validateErr   error
	completionErr error
	embeddingErr  error
}

func (m *mockSettings) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettings) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettings) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.set == nil {
		m.set = map[string]string{}
	}
	m.set[key] = value
	return nil
}

func (m *mockSettings) Keys() []string {
	return []string{"source.root", "agent.top_k", "completion.provider"}
}

func (m *mockSettings) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettings) Validate() error { return m.validateErr }

func (m *mockSettings) ValidateEmbeddingConfig() error { return m.embeddingErr }

func (m *mockSettings) ValidateCompletionConfig() error { return m.completionErr }

// closedSource reports no changes and closes immediately.
type closedSource struct{}

func (closedSource) Watch(context.Context) (<-chan filesystem.Change, error) {
	ch := make(chan filesystem.Change)
	close(ch)
	return ch, nil
}

func testUnits() []domain.UnitDescriptor {
	return []domain.UnitDescriptor{
		{UnitID: "Report1", Title: "Annual Report", Collection: "Y3S2", Subcollection: "Finance"},
		{UnitID: "Intro", Title: "Introduction", Collection: "Y3S2", Subcollection: "Law"},
		{UnitID: "Basics", Title: "Basics", Collection: "Y1S1", Subcollection: "Maths"},
	}
}

// installServices wires s for the duration of the test.
func installServices(t *testing.T, s *Services) {
	t.Helper()
	SetServices(s)
	t.Cleanup(func() {
		SetServices(&Services{})
		closeHooks = nil
	})
}

// testServices returns services backed by mocks over testUnits.
func testServices() (*Services, *mockAgent, *mockIngestion) {
	catalog := &mockCatalog{units: testUnits()}
	agent := &mockAgent{answer: "Liquidity is cash on hand. [Report1 p.2]"}
	ingestion := &mockIngestion{}
	return &Services{
		Catalog:   catalog,
		Scope:     services.NewScopeResolver(catalog),
		Agent:     agent,
		Ingestion: ingestion,
		Tenant:    "user-1",
	}, agent, ingestion
}

// resetFlags restores flag globals cobra keeps between executions.
func resetFlags() {
	flagVerbose, flagUser = false, ""
	ingestForce, ingestWatch = false, false
	runsLimit, runsJSON = 5, false
	catalogJSON = false
	askCollection, askSubcollection, askUnits = "", "", nil
	tuiWatch = false
}

// runCommand executes the root command with args and stdin, returning
// stdout and stderr separately.
func runCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags()
	}()

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}
