package docx

import (
	"regexp"
	"sort"
	"strings"

	"github.com/beevik/etree"
)

const mergeFieldKeyword = "MERGEFIELD"

// prepare collapses complex fields in data and returns the rewritten XML
// with the merge field names it contains, in document order.
func prepare(data []byte) ([]byte, []string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, nil, err
	}
	root := doc.Root()
	if root == nil {
		return data, nil, nil
	}

	for _, p := range descendants(root, "p") {
		collapseComplexFields(p)
	}

	var names []string
	for _, fs := range descendants(root, "fldSimple") {
		if name, ok := parseMergeField(fs.SelectAttrValue("w:instr", "")); ok {
			names = append(names, name)
		}
	}

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, nil, err
	}
	return out, names, nil
}

// parseMergeField extracts the field name from a MERGEFIELD instruction such
// as ` MERGEFIELD  "First Name" \* MERGEFORMAT `.
func parseMergeField(instr string) (string, bool) {
	s := strings.TrimSpace(instr)
	n := len(mergeFieldKeyword)
	if len(s) <= n || !strings.EqualFold(s[:n], mergeFieldKeyword) {
		return "", false
	}
	if s[n] != ' ' && s[n] != '\t' {
		return "", false
	}
	rest := strings.TrimLeft(s[n:], " \t")

	var name string
	if strings.HasPrefix(rest, `"`) {
		end := strings.IndexByte(rest[1:], '"')
		if end < 0 {
			return "", false
		}
		name = rest[1 : 1+end]
	} else {
		name = rest
		if i := strings.IndexAny(rest, " \t"); i >= 0 {
			name = rest[:i]
		}
	}

	name = strings.TrimSpace(name)
	if name == "" || strings.HasPrefix(name, `\`) {
		return "", false
	}
	return name, true
}

// collapseComplexFields rewrites each top-level MERGEFIELD spread over
// fldChar runs in p into a single w:fldSimple. Other complex fields (PAGE,
// IF, ...) are kept as they are.
func collapseComplexFields(p *etree.Element) {
	kids := p.ChildElements()
	for i := 0; i < len(kids); i++ {
		if fieldCharType(kids[i]) != "begin" {
			continue
		}
		end, instr, rPr := scanField(kids, i)
		if end < 0 {
			return
		}
		name, ok := parseMergeField(instr)
		if !ok {
			i = end
			continue
		}
		if rPr == nil {
			rPr = kids[i].SelectElement("w:rPr")
		}

		p.InsertChildAt(kids[i].Index(), simpleField(instr, "«"+name+"»", rPr))
		for _, k := range kids[i : end+1] {
			p.RemoveChild(k)
		}
		i = end
	}
}

// scanField walks runs from the begin marker at kids[start] and returns the
// index of the matching end marker, the instruction text and the formatting
// of the first result run. end is -1 when the field is not closed within p.
func scanField(kids []*etree.Element, start int) (int, string, *etree.Element) {
	var instr strings.Builder
	var rPr *etree.Element
	depth := 0
	inResult := false

	for j := start; j < len(kids); j++ {
		k := kids[j]
		switch fieldCharType(k) {
		case "begin":
			depth++
		case "separate":
			if depth == 1 {
				inResult = true
			}
		case "end":
			depth--
			if depth == 0 {
				return j, instr.String(), rPr
			}
		default:
			if !isTag(k, "r") {
				continue
			}
			if depth == 1 && !inResult {
				for _, it := range k.ChildElements() {
					if isTag(it, "instrText") {
						instr.WriteString(it.Text())
					}
				}
			}
			if inResult && rPr == nil {
				rPr = k.SelectElement("w:rPr")
			}
		}
	}
	return -1, "", nil
}

func fieldCharType(el *etree.Element) string {
	if !isTag(el, "r") {
		return ""
	}
	fc := el.SelectElement("w:fldChar")
	if fc == nil {
		return ""
	}
	return fc.SelectAttrValue("w:fldCharType", "")
}

func simpleField(instr, text string, rPr *etree.Element) *etree.Element {
	fs := etree.NewElement("w:fldSimple")
	fs.CreateAttr("w:instr", instr)
	r := fs.CreateElement("w:r")
	if rPr != nil {
		r.AddChild(rPr.Copy())
	}
	r.CreateElement("w:t").SetText(text)
	return fs
}

// fill replaces every merge field under root that has a value in rec.
func fill(root *etree.Element, rec map[string]string) {
	for _, fs := range descendants(root, "fldSimple") {
		name, ok := parseMergeField(fs.SelectAttrValue("w:instr", ""))
		if !ok {
			continue
		}
		value, ok := rec[name]
		if !ok {
			continue
		}
		parent := fs.Parent()
		if parent == nil {
			continue
		}
		parent.InsertChildAt(fs.Index(), valueRun(fs, value))
		parent.RemoveChild(fs)
	}
}

// valueRun builds the run that stands in for a merged field. Formatting is
// taken from the field's own result run; line breaks become w:br.
func valueRun(fs *etree.Element, value string) *etree.Element {
	r := etree.NewElement("w:r")
	if inner := fs.SelectElement("w:r"); inner != nil {
		if rPr := inner.SelectElement("w:rPr"); rPr != nil {
			r.AddChild(rPr.Copy())
		}
	}

	value = strings.ReplaceAll(value, "\r\n", "\n")
	value = strings.ReplaceAll(value, "\r", "\n")
	for i, line := range strings.Split(value, "\n") {
		if i > 0 {
			r.CreateElement("w:br")
		}
		t := r.CreateElement("w:t")
		t.CreateAttr("xml:space", "preserve")
		t.SetText(sanitize(line))
	}
	return r
}

// sanitize drops characters that XML 1.0 cannot carry.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t',
			r >= 0x20 && r <= 0xD7FF,
			r >= 0xE000 && r <= 0xFFFD,
			r >= 0x10000 && r <= 0x10FFFF:
			return r
		}
		return -1
	}, s)
}

var angleToken = regexp.MustCompile(`(?:<<|«)\s*([A-Za-z0-9_.]+)\s*(?:>>|»)`)

// scanTokens collects plain-text merge tokens from every paragraph under root.
// Runs are joined per paragraph since Word often splits a token across runs.
func scanTokens(root *etree.Element) []string {
	if root == nil {
		return nil
	}
	seen := make(map[string]struct{})
	for _, p := range descendants(root, "p") {
		if hasAncestor(p, "fldSimple") {
			continue
		}
		var text strings.Builder
		for _, t := range descendants(p, "t") {
			if hasAncestor(t, "fldSimple") {
				continue
			}
			text.WriteString(t.Text())
		}
		for _, m := range angleToken.FindAllStringSubmatch(text.String(), -1) {
			seen[m[1]] = struct{}{}
		}
	}

	tokens := make([]string, 0, len(seen))
	for tok := range seen {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return tokens
}

// descendants returns the w:<tag> elements below el in document order.
// The slice is a snapshot so callers may restructure the tree while iterating.
func descendants(el *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		for _, c := range e.ChildElements() {
			if isTag(c, tag) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(el)
	return out
}

func hasAncestor(el *etree.Element, tag string) bool {
	for p := el.Parent(); p != nil; p = p.Parent() {
		if isTag(p, tag) {
			return true
		}
	}
	return false
}

func isTag(el *etree.Element, tag string) bool {
	return el.Space == "w" && el.Tag == tag
}
