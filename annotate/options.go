package annotate

import "fmt"

// Icon holds the start and end marker text for one construct flavor.
type Icon struct {
	Start string
	End   string
}

// IconKey addresses the icon table. Subkind is SubNone for kinds that have
// no clause flavors.
type IconKey struct {
	Kind    Kind
	Subkind Subkind
}

// Options is the engine configuration for one analysis pass. It is built
// once at startup and treated as read-only afterwards; the engine never
// mutates it. Construct values through DefaultOptions or validate custom
// ones with Validate before use.
type Options struct {
	Enabled  map[Kind]bool
	Icons    map[IconKey]Icon
	StyleTag string
}

// DefaultOptions enables every kind with the stock brace icon table.
func DefaultOptions() Options {
	enabled := make(map[Kind]bool, len(AllKinds()))
	for _, kind := range AllKinds() {
		enabled[kind] = true
	}
	icons := make(map[IconKey]Icon, len(defaultIcons))
	for key, icon := range defaultIcons {
		icons[key] = icon
	}
	return Options{
		Enabled:  enabled,
		Icons:    icons,
		StyleTag: "bracepy.marker",
	}
}

var defaultIcons = map[IconKey]Icon{
	{KindFunction, SubNone}:     {Start: "{ func", End: "func }"},
	{KindClass, SubNone}:        {Start: "{ class", End: "class }"},
	{KindLoop, SubNone}:         {Start: "{ loop", End: "loop }"},
	{KindConditional, SubIf}:    {Start: "{ if", End: "if }"},
	{KindConditional, SubElif}:  {Start: "{ elif", End: "elif }"},
	{KindConditional, SubElse}:  {Start: "{ else", End: "else }"},
	{KindException, SubTry}:     {Start: "{ try", End: "try }"},
	{KindException, SubExcept}:  {Start: "{ except", End: "except }"},
	{KindException, SubElse}:    {Start: "{ else", End: "else }"},
	{KindException, SubFinally}: {Start: "{ finally", End: "finally }"},
}

// Validate checks the option value against the closed kind set: every icon
// key must name a legal (kind, subkind) pairing and no enabled kind may be
// missing its icons.
func (o Options) Validate() error {
	for key := range o.Icons {
		if !legalIconKey(key) {
			return fmt.Errorf("icon table: illegal key %s/%s", key.Kind, key.Subkind)
		}
	}
	for kind, on := range o.Enabled {
		if !on {
			continue
		}
		for key := range defaultIcons {
			if key.Kind != kind {
				continue
			}
			if _, ok := o.Icons[key]; !ok {
				return fmt.Errorf("icon table: missing entry for %s/%s", key.Kind, key.Subkind)
			}
		}
	}
	return nil
}

func legalIconKey(key IconKey) bool {
	_, ok := defaultIcons[key]
	return ok
}

// KindEnabled reports whether a construct kind should be extracted.
func (o Options) KindEnabled(kind Kind) bool {
	return o.Enabled[kind]
}

// Icon resolves the marker text for a structure, falling back to the stock
// table when a custom table has no entry.
func (o Options) Icon(kind Kind, sub Subkind) Icon {
	if icon, ok := o.Icons[IconKey{kind, sub}]; ok {
		return icon
	}
	return defaultIcons[IconKey{kind, sub}]
}
