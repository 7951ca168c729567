package main

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	toggleWrapperClass  = "toggle-play-wrapper"
	languageClassPrefix = "language-"
)

type tokenKind int

const (
	tokenHeading tokenKind = iota
	tokenParagraph
	tokenListItem
	tokenCodeBlock
	tokenText
)

// token is one markdown-renderable unit produced by the tree walk. Inline
// markup (links, images, inline code) is rendered into the block's text while
// the token is built, so the render pass never re-inspects markup.
type token struct {
	kind  tokenKind
	level int    // heading level
	lang  string // code block language tag
	text  string
}

// Transformer converts a post's content subtree into markdown. Embedded
// images are handed to the localizer and rewritten to local references.
type Transformer struct {
	localizer ImageLocalizer
}

// NewTransformer creates a content transformer.
func NewTransformer(localizer ImageLocalizer) *Transformer {
	return &Transformer{localizer: localizer}
}

// Transform walks the content subtree once, producing a token stream, then
// renders the tokens to markdown. Code blocks, inline code, links, and images
// become opaque text the moment they are tokenized, so later rendering can
// never mangle them.
func (t *Transformer) Transform(content *goquery.Selection, postURL *url.URL, slug string) string {
	var tokens []token
	for _, node := range content.Nodes {
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			t.walk(child, postURL, slug, &tokens)
		}
	}
	return renderTokens(tokens)
}

func (t *Transformer) walk(n *html.Node, postURL *url.URL, slug string, tokens *[]token) {
	switch n.Type {
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			*tokens = append(*tokens, token{kind: tokenText, text: text})
		}
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.Data {
	case "script", "style":
		return
	case "div":
		if hasClassToken(n, toggleWrapperClass) {
			return
		}
	case "pre":
		*tokens = append(*tokens, t.codeBlockToken(n))
		return
	case "h1", "h2", "h3":
		level := int(n.Data[1] - '0')
		*tokens = append(*tokens, token{kind: tokenHeading, level: level, text: t.inline(n, postURL, slug)})
		return
	case "p":
		*tokens = append(*tokens, token{kind: tokenParagraph, text: t.inline(n, postURL, slug)})
		return
	case "li":
		*tokens = append(*tokens, token{kind: tokenListItem, text: t.inline(n, postURL, slug)})
		return
	case "a":
		*tokens = append(*tokens, token{kind: tokenText, text: t.linkMarkdown(n, postURL)})
		return
	case "img":
		if md := t.imageMarkdown(n, postURL, slug); md != "" {
			*tokens = append(*tokens, token{kind: tokenText, text: md})
		}
		return
	case "code":
		*tokens = append(*tokens, token{kind: tokenText, text: "`" + nodeText(n) + "`"})
		return
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		t.walk(child, postURL, slug, tokens)
	}
}

// inline renders the children of a block element as a single line of markdown.
func (t *Transformer) inline(n *html.Node, postURL *url.URL, slug string) string {
	var b strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		t.inlineNode(child, postURL, slug, &b)
	}
	return strings.TrimSpace(b.String())
}

func (t *Transformer) inlineNode(n *html.Node, postURL *url.URL, slug string, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.Data {
	case "script", "style":
		return
	case "div":
		if hasClassToken(n, toggleWrapperClass) {
			return
		}
	case "a":
		b.WriteString(t.linkMarkdown(n, postURL))
		return
	case "img":
		b.WriteString(t.imageMarkdown(n, postURL, slug))
		return
	case "code":
		b.WriteString("`" + nodeText(n) + "`")
		return
	case "br":
		b.WriteString("\n")
		return
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		t.inlineNode(child, postURL, slug, b)
	}
}

func (t *Transformer) linkMarkdown(n *html.Node, postURL *url.URL) string {
	href := attrValue(n, "href")
	text := nodeText(n)
	if href == "" {
		return text
	}
	return "[" + text + "](" + resolveURL(postURL, href) + ")"
}

func (t *Transformer) imageMarkdown(n *html.Node, postURL *url.URL, slug string) string {
	src := attrValue(n, "src")
	if src == "" {
		return ""
	}
	alt := attrValue(n, "alt")
	if alt == "" {
		alt = "image"
	}
	local := t.localizer.Localize(resolveURL(postURL, src), slug, NamespaceContent)
	return "![" + alt + "](" + local + ")"
}

func (t *Transformer) codeBlockToken(pre *html.Node) token {
	code := findElement(pre, "code")
	if code == nil {
		return token{kind: tokenCodeBlock, text: strings.TrimSpace(nodeText(pre))}
	}
	return token{
		kind: tokenCodeBlock,
		lang: codeLanguage(code),
		text: reconstructCode(code),
	}
}

func codeLanguage(code *html.Node) string {
	for _, cls := range strings.Fields(attrValue(code, "class")) {
		if strings.HasPrefix(cls, languageClassPrefix) {
			return strings.TrimPrefix(cls, languageClassPrefix)
		}
	}
	return ""
}

// reconstructCode rebuilds literal source text from syntax-highlighter span
// soup. Spans are visited in document order; a span whose text ends in a
// newline terminates the current line. Blocks without spans fall back to
// their raw text nodes joined with newlines.
func reconstructCode(code *html.Node) string {
	var lines []string
	var current strings.Builder

	eachElement(code, "span", func(span *html.Node) {
		text := nodeText(span)
		if strings.HasSuffix(text, "\n") {
			current.WriteString(strings.TrimRight(text, "\n"))
			lines = append(lines, current.String())
			current.Reset()
			return
		}
		current.WriteString(text)
	})
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}

	content := strings.Join(lines, "\n")
	if strings.TrimSpace(content) == "" {
		content = strings.TrimSpace(textNodesJoined(code))
	}
	return content
}

var blankLineRun = regexp.MustCompile(`\n\s*\n\s*\n+`)

func renderTokens(tokens []token) string {
	var b strings.Builder
	for _, tok := range tokens {
		switch tok.kind {
		case tokenHeading:
			b.WriteString("\n" + strings.Repeat("#", tok.level) + " " + tok.text + "\n\n")
		case tokenParagraph:
			b.WriteString(tok.text + "\n\n")
		case tokenListItem:
			b.WriteString("* " + tok.text + "\n")
		case tokenCodeBlock:
			b.WriteString("\n```" + tok.lang + "\n" + tok.text + "\n```\n\n")
		case tokenText:
			b.WriteString(tok.text + "\n\n")
		}
	}
	return strings.TrimSpace(blankLineRun.ReplaceAllString(b.String(), "\n\n"))
}

// nodeText concatenates every text node under n.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return b.String()
}

// textNodesJoined joins every text node under n with newlines.
func textNodesJoined(n *html.Node) string {
	var parts []string
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return strings.Join(parts, "\n")
}

func attrValue(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

func hasClassToken(n *html.Node, class string) bool {
	for _, cls := range strings.Fields(attrValue(n, "class")) {
		if cls == class {
			return true
		}
	}
	return false
}

func findElement(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func eachElement(n *html.Node, tag string, fn func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			fn(c)
		}
		eachElement(c, tag, fn)
	}
}

func resolveURL(base *url.URL, ref string) string {
	parsed, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	return base.ResolveReference(parsed).String()
}
