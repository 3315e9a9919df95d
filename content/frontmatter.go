package content

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

const frontmatterDelim = "---"

type frontmatterEnvelope struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Date        string   `yaml:"date"`
	ReadTime    string   `yaml:"readTime"`
	Tags        []string `yaml:"tags"`
	Featured    bool     `yaml:"featured"`
}

// ParseDocument splits a content file into its frontmatter and body. Missing
// fields are left at their zero values; a file without frontmatter yields an
// empty envelope and the whole input as body.
func ParseDocument(src []byte) (Post, error) {
	var meta frontmatterEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(src), &meta)
	if err != nil {
		return Post{}, fmt.Errorf("parse frontmatter: %w", err)
	}
	tags := meta.Tags
	if tags == nil {
		tags = []string{}
	}
	return Post{
		Title:       meta.Title,
		Description: meta.Description,
		Date:        meta.Date,
		ReadTime:    meta.ReadTime,
		Tags:        tags,
		Featured:    meta.Featured,
		Content:     strings.TrimSpace(string(body)),
	}, nil
}

// EncodeDocument renders p as a content file: the frontmatter block, a blank
// line, then the body. The tags key is omitted when p has no tags.
func EncodeDocument(p Post) ([]byte, error) {
	fm, err := encodeFrontmatter(p)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(frontmatterDelim + "\n")
	buf.Write(fm)
	buf.WriteString(frontmatterDelim + "\n\n")
	buf.WriteString(p.Content)
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

func encodeFrontmatter(p Post) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value *yaml.Node) {
		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, value)
	}
	quoted := func(v string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Style: yaml.DoubleQuotedStyle, Value: v}
	}

	add("title", quoted(p.Title))
	add("description", quoted(p.Description))
	add("date", quoted(p.Date))
	add("readTime", quoted(p.ReadTime))
	if len(p.Tags) > 0 {
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, tag := range p.Tags {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: tag})
		}
		add("tags", seq)
	}
	add("featured", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(p.Featured)})

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}
	return buf.Bytes(), nil
}
