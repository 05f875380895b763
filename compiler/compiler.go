package compiler

import (
	"fmt"

	"go.uber.org/zap"

	propschema "github.com/reoring/propschema"
	"github.com/reoring/propschema/rules"
)

// Schema aggregates Properties into a rule table and a JSON-schema-like
// document. It is not safe for concurrent mutation; once built, Validate may
// be called from several goroutines.
type Schema struct {
	order      []string
	props      map[string]*propschema.Property
	docs       map[string]map[string]any
	rules      propschema.RuleTable
	messages   map[string]string
	attributes map[string]string
	engine     propschema.Engine
	logger     *zap.Logger
}

// Option configures a Schema.
type Option func(*Schema)

// WithEngine replaces the default rules.Engine.
func WithEngine(e propschema.Engine) Option {
	return func(s *Schema) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithLogger sets the logger used for compile-time debug output. It is also
// handed to the default engine.
func WithLogger(l *zap.Logger) Option {
	return func(s *Schema) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns an empty Schema backed by rules.Engine unless WithEngine is
// given.
func New(opts ...Option) *Schema {
	s := &Schema{
		props:      map[string]*propschema.Property{},
		docs:       map[string]map[string]any{},
		rules:      propschema.RuleTable{},
		messages:   map[string]string{},
		attributes: map[string]string{},
		logger:     zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.engine == nil {
		s.engine = rules.New(rules.WithLogger(s.logger))
	}
	return s
}

// AddProperty registers p: its document under its name, its static tokens
// as the base rule list, and each conditional rule compiled into a deferred
// entry appended after them. Adding a name twice replaces the earlier entry.
func (s *Schema) AddProperty(p *propschema.Property) *Schema {
	name := p.Name()
	if _, ok := s.docs[name]; !ok {
		s.order = append(s.order, name)
	}
	s.props[name] = p
	s.docs[name] = p.ToArray()

	var list []propschema.FieldRule
	for _, tok := range p.RuleTokens() {
		list = append(list, propschema.Token(tok))
	}
	for _, r := range p.ConditionalRules() {
		fr := Compile(r)
		s.logger.Debug("compiled conditional rule",
			zap.String("field", name),
			zap.Stringer("kind", fr.Kind),
			zap.Strings("rules", fr.Rules))
		list = append(list, fr)
	}
	if len(list) > 0 {
		s.rules[name] = list
	} else {
		delete(s.rules, name)
	}
	return s
}

// AddBuilder adds every Property of b in insertion order.
func (s *Schema) AddBuilder(b *propschema.PropertyBuilder) *Schema {
	for _, p := range b.Properties() {
		s.AddProperty(p)
	}
	return s
}

// WithMessages merges custom messages, keyed "field.rule" or "rule".
func (s *Schema) WithMessages(m map[string]string) *Schema {
	for k, v := range m {
		s.messages[k] = v
	}
	return s
}

// WithAttributes merges display labels used for ":attribute".
func (s *Schema) WithAttributes(m map[string]string) *Schema {
	for k, v := range m {
		s.attributes[k] = v
	}
	return s
}

// Validate runs the compiled rule table against record. The error is
// reserved for misconfiguration (for example an unknown rule token).
func (s *Schema) Validate(record map[string]any) (propschema.Result, error) {
	if record == nil {
		record = map[string]any{}
	}
	res, err := s.engine.Evaluate(propschema.Input{
		Rules:      s.rules,
		Record:     record,
		Messages:   s.messages,
		Attributes: s.attributes,
	})
	if err != nil {
		return propschema.Result{}, fmt.Errorf("compiler: %w", err)
	}
	if res.Errors == nil {
		res.Errors = map[string][]string{}
	}
	return res, nil
}

// Rules returns the compiled rule table.
func (s *Schema) Rules() propschema.RuleTable {
	out := make(propschema.RuleTable, len(s.rules))
	for k, v := range s.rules {
		out[k] = append([]propschema.FieldRule(nil), v...)
	}
	return out
}

// Properties returns the registered documents keyed by name.
func (s *Schema) Properties() map[string]map[string]any {
	out := make(map[string]map[string]any, len(s.docs))
	for k, v := range s.docs {
		out[k] = v
	}
	return out
}

// Property returns the registered Property by name.
func (s *Schema) Property(name string) (*propschema.Property, bool) {
	p, ok := s.props[name]
	return p, ok
}

// Names returns the registered names in insertion order.
func (s *Schema) Names() []string { return append([]string(nil), s.order...) }

// ToArray returns {type: object, properties, required}, where required lists
// the names whose document has required == true.
func (s *Schema) ToArray() map[string]any {
	props := make(map[string]any, len(s.docs))
	required := []string{}
	for _, name := range s.order {
		doc := s.docs[name]
		props[name] = doc
		if r, ok := doc[propschema.KeyRequired].(bool); ok && r {
			required = append(required, name)
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}
