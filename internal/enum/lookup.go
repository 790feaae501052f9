package enum

import (
	"fmt"

	"go.uber.org/zap"
)

// Translator is a text-resource service. Translate returns the text stored
// under key within scope; a missing key is an error.
type Translator interface {
	Translate(key string, scope []string) (string, error)
}

// TranslatorFunc adapts a function to the Translator interface
type TranslatorFunc func(key string, scope []string) (string, error)

// Translate implements Translator
func (f TranslatorFunc) Translate(key string, scope []string) (string, error) {
	return f(key, scope)
}

// Label is the result of a label lookup
type Label struct {
	Text  string
	Found bool
}

// LabelLookup resolves labels through a Translator. Failures of any kind
// are reported as a miss and never returned to the caller.
type LabelLookup struct {
	translator Translator
	logger     *zap.Logger
}

// NewLabelLookup creates a lookup over translator, which may be nil
func NewLabelLookup(translator Translator, logger *zap.Logger) *LabelLookup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LabelLookup{translator: translator, logger: logger}
}

// Lookup returns the label stored for alias within scope
func (l *LabelLookup) Lookup(alias string, scope ...string) (label Label) {
	if l == nil || l.translator == nil {
		return Label{}
	}

	defer func() {
		if r := recover(); r != nil {
			l.miss(alias, scope, fmt.Errorf("translator panic: %v", r))
			label = Label{}
		}
	}()

	text, err := l.translator.Translate(alias, scope)
	if err != nil {
		l.miss(alias, scope, err)
		return Label{}
	}
	if text == "" {
		l.miss(alias, scope, fmt.Errorf("empty translation"))
		return Label{}
	}
	return Label{Text: text, Found: true}
}

func (l *LabelLookup) miss(alias string, scope []string, err error) {
	l.logger.Debug("label lookup missed",
		zap.String("alias", alias),
		zap.Strings("scope", scope),
		zap.Error(err),
	)
}
