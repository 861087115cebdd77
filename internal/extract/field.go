package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/filgoal/internal/match"
	"golang.org/x/net/html"
)

// FieldKind is the meaning of one auxiliary value next to a match.
type FieldKind int

const (
	// FieldUnknown marks a value whose meaning could not be told.
	FieldUnknown FieldKind = iota
	// FieldStadium is the venue name.
	FieldStadium
	// FieldKickoff is the kickoff time as shown on the page.
	FieldKickoff
	// FieldChannel is the broadcasting channel.
	FieldChannel
)

func (k FieldKind) String() string {
	switch k {
	case FieldStadium:
		return "stadium"
	case FieldKickoff:
		return "kickoff"
	case FieldChannel:
		return "channel"
	default:
		return "unknown"
	}
}

// Icon sprite ids used by the site for each auxiliary field.
const (
	iconStadium = "fb_field"
	iconKickoff = "fb_calendar"
	iconChannel = "fb_screen"
)

// positionalKinds is the field order used by markup that predates the icons.
var positionalKinds = []FieldKind{FieldStadium, FieldKickoff, FieldChannel}

// auxFragment is one value of a match's auxiliary block.
type auxFragment struct {
	identity string
	label    string
}

// auxFields holds the resolved auxiliary values of one match.
type auxFields struct {
	stadium *string
	kickoff *string
	channel *string
}

// ClassifyIcon maps an icon identity token to the field it labels.
func ClassifyIcon(identity string) FieldKind {
	switch {
	case identity == "":
		return FieldUnknown
	case strings.Contains(identity, iconStadium):
		return FieldStadium
	case strings.Contains(identity, iconKickoff):
		return FieldKickoff
	case strings.Contains(identity, iconChannel):
		return FieldChannel
	default:
		return FieldUnknown
	}
}

// ResolveField classifies a single auxiliary fragment by its icon alone.
func ResolveField(fragment *goquery.Selection) FieldKind {
	return ClassifyIcon(iconIdentity(fragment))
}

// iconIdentity finds the symbolic icon reference inside a fragment: the sprite
// reference of an <svg><use>, else the svg class, else an <i> icon class.
func iconIdentity(fragment *goquery.Selection) string {
	for _, n := range fragment.Find("svg use").Nodes {
		if ref := spriteRef(n); ref != "" {
			return ref
		}
	}
	if class := attrValue(fragment.Find("svg").First(), "class"); class != "" {
		return class
	}
	return attrValue(fragment.Find("i[class]").First(), "class")
}

// spriteRef reads href from a <use> node. The HTML parser files xlink:href
// under the xlink namespace with key "href", so both spellings are checked.
func spriteRef(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Key == "href" || a.Key == "xlink:href" {
			if v := strings.TrimSpace(a.Val); v != "" {
				return v
			}
		}
	}
	return ""
}

// auxFragments lists the values inside a .match-aux block
func auxFragments(aux *goquery.Selection) []auxFragment {
	spans := aux.ChildrenFiltered("span")
	if spans.Length() == 0 {
		spans = aux.Find("span")
	}

	fragments := make([]auxFragment, 0, spans.Length())
	spans.Each(func(_ int, s *goquery.Selection) {
		fragments = append(fragments, auxFragment{
			identity: iconIdentity(s),
			label:    cleanText(s),
		})
	})
	return fragments
}

// classifyByIcon is the primary strategy. It reports false when no fragment
// carries an icon at all, which is the only case the positional strategy may run.
func classifyByIcon(fragments []auxFragment) ([]FieldKind, bool) {
	kinds := make([]FieldKind, len(fragments))
	found := false
	for i, f := range fragments {
		if f.identity != "" {
			found = true
		}
		kinds[i] = ClassifyIcon(f.identity)
	}
	return kinds, found
}

// classifyByPosition maps fragments 0/1/2 to stadium/kickoff/channel.
func classifyByPosition(fragments []auxFragment) []FieldKind {
	kinds := make([]FieldKind, len(fragments))
	for i := range fragments {
		if i < len(positionalKinds) {
			kinds[i] = positionalKinds[i]
		}
	}
	return kinds
}

// resolveAux classifies every fragment of an aux block and keeps, per kind,
// the first non-empty label in document order.
func resolveAux(aux *goquery.Selection) auxFields {
	var out auxFields
	if aux == nil || aux.Length() == 0 {
		return out
	}

	fragments := auxFragments(aux)
	kinds, ok := classifyByIcon(fragments)
	if !ok {
		kinds = classifyByPosition(fragments)
	}

	for i, f := range fragments {
		var slot **string
		switch kinds[i] {
		case FieldStadium:
			slot = &out.stadium
		case FieldKickoff:
			slot = &out.kickoff
		case FieldChannel:
			slot = &out.channel
		default:
			continue
		}
		if *slot == nil {
			*slot = match.Optional(f.label)
		}
	}
	return out
}
