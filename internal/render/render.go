// Where: internal/render/render.go
// What: Render a project configuration as YAML or JSON.
// Why: Give transform a readable config file that keeps behavior order.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/poruru/edge-manifest/internal/manifest"
	"gopkg.in/yaml.v3"
)

// Format selects the output encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat accepts yaml, yml and json.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format %q (expected yaml or json)", value)
	}
}

// Header carries the provenance written at the top of YAML output.
type Header struct {
	Tool   string
	Source string
}

//go:embed templates/*.tmpl
var templateFS embed.FS

var templateCache sync.Map

var sectionTitles = []struct {
	key   string
	title string
}{
	{"origin", "Origins"},
	{"cache", "Cache policies"},
	{"rules", "Rules"},
	{"domain", "Domain"},
	{"purge", "Purge"},
	{"networkList", "Network lists"},
}

type section struct {
	Title string
	Count int
	Body  string
}

type yamlTemplateData struct {
	Tool     string
	Source   string
	Sections []section
}

// Config renders cfg in the requested format.
func Config(cfg manifest.Config, format Format, header Header) ([]byte, error) {
	root, err := configNode(cfg)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatJSON:
		return renderJSON(root)
	case FormatYAML, "":
		return renderYAML(root, header)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

func configNode(cfg manifest.Config) (*yaml.Node, error) {
	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		return doc.Content[0], nil
	}
	return &doc, nil
}

func renderYAML(root *yaml.Node, header Header) ([]byte, error) {
	data := yamlTemplateData{
		Tool:   header.Tool,
		Source: header.Source,
	}
	if data.Tool == "" {
		data.Tool = "edgeman"
	}
	if data.Source == "" {
		data.Source = "manifest.json"
	}
	for _, entry := range sectionTitles {
		key, value := lookup(root, entry.key)
		if value == nil {
			continue
		}
		body, err := encodeYAML(&yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: []*yaml.Node{key, value}})
		if err != nil {
			return nil, err
		}
		count := 1
		if value.Kind == yaml.SequenceNode {
			count = len(value.Content)
		}
		data.Sections = append(data.Sections, section{Title: entry.title, Count: count, Body: body})
	}

	tmpl, err := loadTemplate("config.yaml.tmpl")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func encodeYAML(node *yaml.Node) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func loadTemplate(name string) (*template.Template, error) {
	if value, ok := templateCache.Load(name); ok {
		return value.(*template.Template), nil
	}
	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return nil, err
	}
	templateCache.Store(name, tmpl)
	return tmpl, nil
}

func lookup(node *yaml.Node, key string) (*yaml.Node, *yaml.Node) {
	if node.Kind != yaml.MappingNode {
		return nil, nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i], node.Content[i+1]
		}
	}
	return nil, nil
}
