package internal

import (
	"regexp"
	"strings"
)

// DirectiveKind classifies a recognized directive line
type DirectiveKind int

// Directive kind constants
const (
	KindIf DirectiveKind = iota
	KindElif
	KindIfdef
	KindIfndef
	KindElse
	KindEndif
	KindError
	KindDefine
	KindUndef
	KindInclude
	KindIncludeMacro
	KindSystemInclude
)

var directiveKindNames = map[DirectiveKind]string{
	KindIf:            KeywordIf,
	KindElif:          KeywordElif,
	KindIfdef:         KeywordIfdef,
	KindIfndef:        KeywordIfndef,
	KindElse:          KeywordElse,
	KindEndif:         KeywordEndif,
	KindError:         KeywordError,
	KindDefine:        KeywordDefine,
	KindUndef:         KeywordUndef,
	KindInclude:       KeywordInclude,
	KindIncludeMacro:  KeywordInclude,
	KindSystemInclude: KeywordInclude,
}

// String returns the directive keyword
func (k DirectiveKind) String() string {
	return directiveKindNames[k]
}

// IsConditional reports whether the kind opens, continues or closes a block
func (k DirectiveKind) IsConditional() bool {
	switch k {
	case KindIf, KindElif, KindIfdef, KindIfndef, KindElse, KindEndif:
		return true
	default:
		return false
	}
}

// IsInclude reports whether the kind is any include form
func (k DirectiveKind) IsInclude() bool {
	return k == KindInclude || k == KindIncludeMacro || k == KindSystemInclude
}

// keywordKinds maps keywords to kinds; include is refined by its argument
var keywordKinds = map[string]DirectiveKind{
	KeywordIf:      KindIf,
	KeywordElif:    KindElif,
	KeywordIfdef:   KindIfdef,
	KeywordIfndef:  KindIfndef,
	KeywordElse:    KindElse,
	KeywordEndif:   KindEndif,
	KeywordError:   KindError,
	KeywordDefine:  KindDefine,
	KeywordUndef:   KindUndef,
	KeywordInclude: KindInclude,
}

// unsignedSuffixPattern matches an integer literal followed by a u/U suffix
var unsignedSuffixPattern = regexp.MustCompile(`\b(0[xX][0-9A-Fa-f]+|[0-9]+)[uU]([lL]{0,2})\b`)

// StripUnsignedSuffix drops the unsigned suffix of integer literals: 123u becomes 123
func StripUnsignedSuffix(line string) string {
	if !strings.ContainsAny(line, "uU") {
		return line
	}
	return unsignedSuffixPattern.ReplaceAllString(line, "$1$2")
}

// IncludeRange bounds a partial include
type IncludeRange struct {
	FromText  string
	ToText    string
	From      *regexp.Regexp
	To        *regexp.Regexp // nil runs the range to end of file
	Inclusive bool
}

// Key identifies the range for cycle detection
func (r *IncludeRange) Key() string {
	if r == nil {
		return StringValueEmpty
	}
	marker := RangeMarkerExclusive
	if r.Inclusive {
		marker = RangeMarkerInclusive
	}
	return marker + RangeSeparator + r.FromText + RangeSeparator + r.ToText
}

// Directive is a classified directive line
type Directive struct {
	Kind         DirectiveKind
	Expr         string // if, elif
	Name         string // ifdef, ifndef, define, undef, include NAME
	Value        string // define
	FunctionLike bool   // define NAME(args)
	Params       string
	Target       string // include "x", include <x>
	Range        *IncludeRange
	Message      string // error
	Raw          string
}

// RecognizeDirective classifies one line. It returns nil for content lines,
// including unknown directives. On malformed syntax it returns the partially
// filled directive alongside the error so callers can tell what was attempted.
func RecognizeDirective(line string) (*Directive, error) {
	trimmed := strings.TrimLeft(line, " \t")
	if len(trimmed) == 0 || trimmed[0] != CharHash {
		return nil, nil
	}

	body := strings.TrimLeft(trimmed[1:], " \t")
	end := 0
	for end < len(body) && isIdentPart(body[end]) {
		end++
	}
	keyword := body[:end]
	kind, ok := keywordKinds[keyword]
	if !ok {
		return nil, nil
	}

	d := &Directive{Kind: kind, Raw: line}
	rest := body[end:]

	var err error
	switch kind {
	case KindIf, KindElif:
		d.Expr = strings.TrimSpace(rest)
		if d.Expr == StringValueEmpty {
			err = NewMalformedDirectiveError(ErrMsgMissingCondition, line)
		}
	case KindIfdef, KindIfndef, KindUndef:
		d.Name, _ = leadingIdentifier(rest)
		if d.Name == StringValueEmpty {
			err = NewMalformedDirectiveError(ErrMsgMissingMacroName, line)
		}
	case KindElse, KindEndif:
		// trailing text is tolerated
	case KindError:
		d.Message = stripComments(rest)
	case KindDefine:
		err = parseDefine(d, rest)
	case KindInclude:
		err = parseInclude(d, rest)
	}
	return d, err
}

// leadingIdentifier returns the identifier at the start of s (after blanks) and the remainder
func leadingIdentifier(s string) (string, string) {
	s = strings.TrimLeft(s, " \t")
	if len(s) == 0 || !isIdentStart(s[0]) {
		return StringValueEmpty, s
	}
	end := 1
	for end < len(s) && isIdentPart(s[end]) {
		end++
	}
	return s[:end], s[end:]
}

// parseDefine fills name and value. NAME( directly after the name marks a
// function-like macro.
func parseDefine(d *Directive, rest string) error {
	if len(rest) > 0 && rest[0] != ' ' && rest[0] != '\t' {
		return NewMalformedDirectiveError(ErrMsgMissingMacroName, d.Raw)
	}
	name, after := leadingIdentifier(rest)
	if name == StringValueEmpty {
		return NewMalformedDirectiveError(ErrMsgMissingMacroName, d.Raw)
	}
	d.Name = name

	if strings.HasPrefix(after, "(") {
		closing := strings.IndexByte(after, ')')
		if closing < 0 {
			return NewMalformedDirectiveError(ErrMsgBadMacroParams, d.Raw)
		}
		d.FunctionLike = true
		d.Params = after[1:closing]
		d.Value = stripComments(after[closing+1:])
		return nil
	}

	d.Value = stripComments(after)
	return nil
}

// parseInclude handles the quoted, system and macro-valued forms
func parseInclude(d *Directive, rest string) error {
	arg := strings.TrimSpace(rest)
	if arg == StringValueEmpty {
		return NewMalformedDirectiveError(ErrMsgMissingIncludeName, d.Raw)
	}

	switch arg[0] {
	case CharDoubleQuote:
		closing := strings.IndexByte(arg[1:], CharDoubleQuote)
		if closing < 0 {
			return NewMalformedDirectiveError(ErrMsgUnterminatedInclude, d.Raw)
		}
		d.Target = arg[1 : closing+1]
		if d.Target == StringValueEmpty {
			return NewMalformedDirectiveError(ErrMsgMissingIncludeName, d.Raw)
		}
		return parseIncludeTail(d, strings.TrimSpace(arg[closing+2:]))

	case '<':
		closing := strings.IndexByte(arg, '>')
		if closing < 0 {
			return NewMalformedDirectiveError(ErrMsgUnterminatedInclude, d.Raw)
		}
		d.Kind = KindSystemInclude
		d.Target = arg[1:closing]
		return nil

	default:
		d.Kind = KindIncludeMacro
		d.Name = strings.Fields(arg)[0]
		return nil
	}
}

// parseIncludeTail parses an optional "fromto[_]: from@to" after a quoted target
func parseIncludeTail(d *Directive, tail string) error {
	if tail == StringValueEmpty || strings.HasPrefix(tail, LineCommentStart) || strings.HasPrefix(tail, blockCommentStart) {
		return nil
	}

	var rng IncludeRange
	switch {
	case strings.HasPrefix(tail, RangeMarkerInclusive+rangeMarkerColon):
		rng.Inclusive = true
		tail = tail[len(RangeMarkerInclusive)+1:]
	case strings.HasPrefix(tail, RangeMarkerExclusive+rangeMarkerColon):
		tail = tail[len(RangeMarkerExclusive)+1:]
	default:
		return NewMalformedDirectiveError(ErrMsgUnexpectedTrailing, d.Raw)
	}

	spec := strings.TrimSpace(tail)
	if strings.Count(spec, RangeSeparator) != 1 {
		return NewMalformedDirectiveError(ErrMsgBadRangeSpec, d.Raw)
	}
	parts := strings.SplitN(spec, RangeSeparator, 2)
	rng.FromText = strings.TrimSpace(parts[0])
	rng.ToText = strings.TrimSpace(parts[1])

	from, err := regexp.Compile(rng.FromText)
	if err != nil {
		return rangePatternError(d, rng.FromText, err)
	}
	rng.From = from

	if rng.ToText != StringValueEmpty {
		to, err := regexp.Compile(rng.ToText)
		if err != nil {
			return rangePatternError(d, rng.ToText, err)
		}
		rng.To = to
	}

	d.Range = &rng
	return nil
}

// rangePatternError reports a range regex that does not compile. The pattern
// is the detail; the directive line is kept as the location's raw text.
func rangePatternError(d *Directive, pattern string, cause error) *DirectiveError {
	err := NewMalformedDirectiveError(ErrMsgBadRangePattern, pattern).WithCause(cause)
	err.Location.Raw = d.Raw
	return err
}

const (
	blockCommentStart = "/*"
	blockCommentEnd   = "*/"
	rangeMarkerColon  = ":"
)

// stripComments removes block comments and a trailing line comment outside of
// quoted text, then trims the result
func stripComments(s string) string {
	var sb strings.Builder
	var quote byte
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			sb.WriteByte(ch)
			if ch == CharBackslash && i+1 < len(s) {
				i++
				sb.WriteByte(s[i])
			} else if ch == quote {
				quote = 0
			}
			continue
		}
		if ch == CharDoubleQuote || ch == CharSingleQuote {
			quote = ch
			sb.WriteByte(ch)
			continue
		}
		if strings.HasPrefix(s[i:], LineCommentStart) {
			break
		}
		if strings.HasPrefix(s[i:], blockCommentStart) {
			end := strings.Index(s[i+2:], blockCommentEnd)
			if end < 0 {
				break
			}
			sb.WriteByte(' ')
			i += end + 3
			continue
		}
		sb.WriteByte(ch)
	}
	return strings.TrimSpace(sb.String())
}
