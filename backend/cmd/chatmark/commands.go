package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jun/chatmark/core/emoji"
	"github.com/jun/chatmark/core/highlight"
	"github.com/jun/chatmark/core/markdown"
	"github.com/jun/chatmark/core/textformat"
)

// Global carries the streams commands read from and write to.
type Global struct {
	Out io.Writer
	In  io.Reader
}

// CLI definition & global flags.
type CLI struct {
	Verbose bool `short:"v" help:"Enable verbose logging"`

	Render RenderCmd `cmd:"" help:"Render a Markdown message to HTML"`
	CSS    CSSCmd    `cmd:"" help:"Print the stylesheet for highlighted code blocks"`
}

// AfterApply sets up logging once flags are parsed.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	File string `arg:"" optional:"" help:"Markdown file to render (default stdin)" type:"existingfile"`

	Singleline     bool     `help:"Render as a single line"`
	Search         []string `short:"s" help:"Search terms to highlight"`
	SiteURL        string   `name:"site-url" help:"Site URL used to route internal links"`
	ManagedPath    []string `name:"managed-path" help:"Site paths that open in a new tab"`
	AutolinkScheme []string `name:"autolink-scheme" help:"URL schemes allowed in autolinks (default all)"`
	ProxyImages    bool     `name:"proxy-images" help:"Rewrite image sources through the site image proxy"`
	Mentions       bool     `help:"Render @mentions"`
	EmojiFile      string   `name:"emoji-file" help:"YAML file of custom emoji" type:"existingfile"`
	Style          string   `help:"Highlight style" default:"github"`
	Document       bool     `help:"Render as a full document instead of a chat message"`
}

func (r *RenderCmd) Run(g *Global) error {
	source, err := r.read(g.In)
	if err != nil {
		return err
	}

	if r.Document {
		out, err := markdown.NewDocumentRenderer(r.Style).Render(source)
		if err != nil {
			return fmt.Errorf("render document: %w", err)
		}
		_, err = g.Out.Write(out)
		return err
	}

	opts, err := r.options()
	if err != nil {
		return err
	}
	emojis, err := r.emoji()
	if err != nil {
		return err
	}

	html, err := markdown.FormatMessage(string(source), opts, emojis,
		markdown.WithHighlighter(highlight.New(highlight.WithStyle(r.Style))))
	if err != nil {
		return fmt.Errorf("render message: %w", err)
	}
	slog.Debug("rendered message", "bytes_in", len(source), "bytes_out", len(html))
	_, err = io.WriteString(g.Out, html)
	return err
}

func (r *RenderCmd) read(stdin io.Reader) ([]byte, error) {
	if r.File == "" || r.File == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(r.File)
}

func (r *RenderCmd) options() (textformat.Options, error) {
	settings := textformat.Settings{
		Singleline:           r.Singleline,
		SearchTerms:          r.Search,
		ProxyImages:          r.ProxyImages,
		AutolinkedURLSchemes: r.AutolinkScheme,
		SiteURL:              r.SiteURL,
		ManagedResourcePaths: r.ManagedPath,
		AtMentions:           r.Mentions,
	}
	opts, err := settings.Options()
	if err != nil {
		return textformat.Options{}, fmt.Errorf("invalid options: %w", err)
	}
	if r.ProxyImages && r.SiteURL == "" {
		return textformat.Options{}, errors.New("--proxy-images requires --site-url")
	}
	return opts, nil
}

func (r *RenderCmd) emoji() (*emoji.Map, error) {
	if r.EmojiFile == "" {
		return emoji.NewMap(), nil
	}
	f, err := os.Open(r.EmojiFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	custom, err := emoji.LoadYAML(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", r.EmojiFile, err)
	}
	return emoji.NewMap(custom...), nil
}

// CSSCmd implements the 'css' command.
type CSSCmd struct {
	Style string `help:"Highlight style" default:"github"`
}

func (c *CSSCmd) Run(g *Global) error {
	return highlight.New(highlight.WithStyle(c.Style)).WriteCSS(g.Out)
}
