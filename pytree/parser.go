package pytree

// Parser converts file contents into a structural tree.
type Parser interface {
	Parse(content string, path string) (*Tree, error)
	Language() string
}

// ParserRegistry keeps parser implementations keyed by language.
type ParserRegistry struct {
	parsers map[string]Parser
}

// NewParserRegistry constructs a registry with the Python parser installed.
func NewParserRegistry() *ParserRegistry {
	registry := &ParserRegistry{parsers: make(map[string]Parser)}
	registry.Register(NewPythonParser())
	return registry
}

// Register adds a parser keyed by its Language.
func (pr *ParserRegistry) Register(parser Parser) {
	if parser == nil {
		return
	}
	pr.parsers[parser.Language()] = parser
}

// GetParser retrieves a parser by language identifier.
func (pr *ParserRegistry) GetParser(language string) (Parser, bool) {
	parser, ok := pr.parsers[language]
	return parser, ok
}

// SupportedLanguages returns all registered languages.
func (pr *ParserRegistry) SupportedLanguages() []string {
	langs := make([]string, 0, len(pr.parsers))
	for lang := range pr.parsers {
		langs = append(langs, lang)
	}
	return langs
}
