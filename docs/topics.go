// Package docs holds the user documentation of bsk, one markdown file per topic.
package docs

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
)

//go:embed *.md
var docs embed.FS

// index is the topic listing all the others.
const index = "readme"

// Topic returns the content of a documentation topic, "*" returns them all.
func Topic(topic string) (string, error) {
	if topic == "*" {
		topics, err := Topics()
		if err != nil {
			return "", err
		}
		return Concat(append([]string{index}, topics...)...)
	}
	content, err := docs.ReadFile(topic + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found: %w", topic, err)
	}
	return string(content), nil
}

// Concat returns the content of several topics, separated by a blank line.
func Concat(topics ...string) (string, error) {
	var b strings.Builder
	for _, topic := range topics {
		content, err := Topic(topic)
		if err != nil {
			return "", err
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// Topics returns the sorted names of the topics, without the index.
func Topics() ([]string, error) {
	files, err := fs.Glob(docs, "*.md")
	if err != nil {
		return nil, err
	}
	var topics []string
	for _, f := range files {
		if name := strings.TrimSuffix(path.Base(f), ".md"); name != index {
			topics = append(topics, name)
		}
	}
	slices.Sort(topics)
	return topics, nil
}
