// Package markup 把原始 HTML 包装为可查询的树。
//
// 上游站点经常输出不合规的 HTML，因此这里只做“容错解析 + 查询”，
// 绝不因为标签不闭合等问题报错；只有输入根本不是 markup 时才返回 NavigationError。
package markup

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// NavigationError 表示输入无法作为 markup 解析（结构导航失败）。
type NavigationError struct {
	Reason string
	Err    error
}

func (e *NavigationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("markup: %s: %v", e.Reason, e.Err)
	}
	return "markup: " + e.Reason
}

func (e *NavigationError) Unwrap() error { return e.Err }

// IsNavigationError 判断 err 是否为结构导航失败。
func IsNavigationError(err error) bool {
	var e *NavigationError
	return errors.As(err, &e)
}

// Tree 是一次解析得到的文档树；每次 Parse 独立分配，不共享状态。
type Tree struct {
	doc *goquery.Document
}

// Parse 容错解析 HTML。
func Parse(src []byte) (*Tree, error) {
	if len(bytes.TrimSpace(src)) == 0 {
		return nil, &NavigationError{Reason: "empty document"}
	}
	if !bytes.ContainsRune(src, '<') {
		return nil, &NavigationError{Reason: "input contains no markup"}
	}
	root, err := html.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, &NavigationError{Reason: "html parse failed", Err: err}
	}
	return &Tree{doc: goquery.NewDocumentFromNode(root)}, nil
}

// Root 返回整棵树的根节点。
func (t *Tree) Root() Node {
	if t == nil || t.doc == nil {
		return Node{}
	}
	return Node{sel: t.doc.Selection}
}

// Node 是对单个元素（或空选择）的只读视图。零值表示“不存在”。
type Node struct {
	sel *goquery.Selection
}

// Link 是从 <a href> 提取的 (目标, 可见文本)。
type Link struct {
	Href string
	Text string
}

func (n Node) Exists() bool { return n.sel != nil && n.sel.Length() > 0 }

// Tag 返回元素名（小写）；不存在时为空串。
func (n Node) Tag() string {
	if !n.Exists() {
		return ""
	}
	return goquery.NodeName(n.sel.First())
}

// FindAll 按 CSS 选择器查找全部后代（文档顺序）。
func (n Node) FindAll(selector string) []Node {
	if !n.Exists() {
		return nil
	}
	var out []Node
	n.sel.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, Node{sel: s})
	})
	return out
}

// Find 返回第一个匹配的后代。
func (n Node) Find(selector string) (Node, bool) {
	if !n.Exists() {
		return Node{}, false
	}
	s := n.sel.Find(selector).First()
	if s.Length() == 0 {
		return Node{}, false
	}
	return Node{sel: s}, true
}

// FindAllMatching 在 FindAll 的基础上按可见文本过滤。
func (n Node) FindAllMatching(selector string, re *regexp.Regexp) []Node {
	var out []Node
	for _, c := range n.FindAll(selector) {
		if re.MatchString(c.Text()) {
			out = append(out, c)
		}
	}
	return out
}

// Attr 读取属性值（已 TrimSpace）。
func (n Node) Attr(name string) (string, bool) {
	if !n.Exists() {
		return "", false
	}
	v, ok := n.sel.First().Attr(name)
	return strings.TrimSpace(v), ok
}

// HasClass 报告元素是否带有 class。
func (n Node) HasClass(class string) bool {
	return n.Exists() && n.sel.First().HasClass(class)
}

// Text 返回可见文本：内联标签直接拼接，<br> 与块级元素视为空白，最终折叠空白。
func (n Node) Text() string {
	if !n.Exists() {
		return ""
	}
	var b strings.Builder
	for _, hn := range n.sel.Nodes {
		writeText(&b, hn)
	}
	return NormSpace(b.String())
}

// Links 返回所有 <a href> 后代（文档顺序）。
func (n Node) Links() []Link {
	var out []Link
	for _, a := range n.FindAll("a[href]") {
		href, _ := a.Attr("href")
		out = append(out, Link{Href: href, Text: a.Text()})
	}
	return out
}

// Without 返回移除了匹配后代的副本；原树不受影响。
func (n Node) Without(selector string) Node {
	if !n.Exists() {
		return Node{}
	}
	c := n.sel.First().Clone()
	c.Find(selector).Remove()
	return Node{sel: c}
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript":
			return
		}
	}
	block := n.Type == html.ElementNode && isBlock(n.Data)
	if block {
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	if block {
		b.WriteByte(' ')
	}
}

func isBlock(tag string) bool {
	switch tag {
	case "br", "p", "div", "li", "ul", "ol", "tr", "td", "th", "table",
		"h1", "h2", "h3", "h4", "h5", "h6", "section", "article", "header", "footer", "hr":
		return true
	default:
		return false
	}
}
