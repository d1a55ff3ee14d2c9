package admin

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"pdf-exporter/internal/driver"
	"pdf-exporter/internal/security"
)

var (
	ErrUnknownModel  = errors.New("unknown model")
	ErrUnknownAction = errors.New("unknown action")
	ErrNoSelection   = errors.New("no rows selected")
)

// ModelConfig is one entry of the models file.
type ModelConfig struct {
	Name        string            `yaml:"name"`
	VerboseName string            `yaml:"verbose_name"`
	Source      string            `yaml:"source"`
	Key         string            `yaml:"key"`
	Fields      []string          `yaml:"fields"`
	ListDisplay []string          `yaml:"list_display"`
	Labels      map[string]string `yaml:"labels"`
}

type modelsFile struct {
	Models []ModelConfig `yaml:"models"`
}

// LoadModels decodes a models file.
func LoadModels(r io.Reader) ([]ModelConfig, error) {
	var f modelsFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode models: %w", err)
	}
	return f.Models, nil
}

func LoadModelsFile(path string) ([]ModelConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadModels(f)
}

func (c ModelConfig) validate() error {
	if c.Name == "" {
		return errors.New("model name is required")
	}
	if err := security.ValidateIdentifier(c.Source); err != nil {
		return fmt.Errorf("model %s source: %w", c.Name, err)
	}
	if err := security.ValidateIdentifier(c.Key); err != nil {
		return fmt.Errorf("model %s key: %w", c.Name, err)
	}
	return nil
}

// Admin builds the record-backed admin for c. Fields defaults to
// ListDisplay when empty.
func (c ModelConfig) Admin() *ModelAdmin[driver.Record] {
	names := c.Fields
	if len(names) == 0 {
		names = c.ListDisplay
	}
	m := &ModelAdmin[driver.Record]{
		Model:       c.Name,
		VerboseName: c.VerboseName,
		ListDisplay: c.ListDisplay,
	}
	for _, name := range names {
		m.Fields = append(m.Fields, Field[driver.Record]{
			Name:  name,
			Label: c.Labels[name],
			Value: recordValue(name),
		})
	}
	return m
}

func recordValue(name string) func(driver.Record) any {
	return func(r driver.Record) any { return r[name] }
}

type registration struct {
	config  ModelConfig
	admin   *ModelAdmin[driver.Record]
	actions map[string]Action[driver.Record]
}

// ModelInfo describes a registered model to API clients.
type ModelInfo struct {
	Name        string   `json:"name"`
	VerboseName string   `json:"verbose_name"`
	Columns     []string `json:"columns"`
	Actions     []string `json:"actions"`
}

// Site is the registry of exportable models.
type Site struct {
	driver   driver.Driver
	exporter *Exporter

	mu     sync.RWMutex
	models map[string]*registration
}

func NewSite(d driver.Driver, e *Exporter) *Site {
	return &Site{
		driver:   d,
		exporter: e,
		models:   make(map[string]*registration),
	}
}

// Register adds a model with the default actions.
func (s *Site) Register(c ModelConfig) error {
	if err := c.validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.models[c.Name]; ok {
		return fmt.Errorf("model %s already registered", c.Name)
	}
	s.models[c.Name] = &registration{
		config:  c,
		admin:   c.Admin(),
		actions: DefaultActions[driver.Record](s.exporter),
	}
	slog.Debug("Model registered", "model", c.Name, "source", c.Source)
	return nil
}

func (s *Site) Models() []ModelInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ModelInfo, 0, len(s.models))
	for _, reg := range s.models {
		info := ModelInfo{
			Name:        reg.config.Name,
			VerboseName: reg.admin.Title(),
		}
		for _, c := range reg.admin.Columns() {
			info.Columns = append(info.Columns, c.Header())
		}
		for name := range reg.actions {
			info.Actions = append(info.Actions, name)
		}
		sort.Strings(info.Actions)
		out = append(out, info)
	}
	slices.SortFunc(out, func(a, b ModelInfo) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

func (s *Site) lookup(model, action string) (*registration, Action[driver.Record], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reg, ok := s.models[model]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownModel, model)
	}
	act, ok := reg.actions[action]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
	return reg, act, nil
}

// Run loads the selected rows of model and invokes action on them.
func (s *Site) Run(ctx context.Context, model, action string, ids []string) (*Document, error) {
	reg, act, err := s.lookup(model, action)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrNoSelection
	}

	rows, err := s.driver.Fetch(ctx, driver.Selection{
		Source: reg.config.Source,
		Key:    reg.config.Key,
		IDs:    ids,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", model, err)
	}
	return act(ctx, reg.admin, rows)
}
