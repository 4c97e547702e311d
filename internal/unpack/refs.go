package unpack

// refAttrs lists, per element name, the attributes that may hold a
// cross-reference to a sibling part. Fixed domain knowledge; elements
// not listed here are never rewritten.
var refAttrs = map[string][]string{
	"a":          {"href"},
	"applet":     {"codebase"},
	"area":       {"href"},
	"audio":      {"src"},
	"blockquote": {"cite"},
	"body":       {"background"},
	"button":     {"formaction"},
	"command":    {"icon"},
	"del":        {"cite"},
	"embed":      {"src"},
	"form":       {"action"},
	"frame":      {"longdesc", "src"},
	"head":       {"profile"},
	"html":       {"manifest"},
	"iframe":     {"longdesc", "src"},
	"img":        {"longdesc", "src", "usemap"},
	"input":      {"formaction", "src", "usemap"},
	"ins":        {"cite"},
	"link":       {"href"},
	"object":     {"classid", "codebase", "data", "usemap"},
	"q":          {"cite"},
	"script":     {"src"},
	"source":     {"src"},
	"track":      {"src"},
	"video":      {"poster", "src"},
}
